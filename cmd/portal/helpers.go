package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"log"
	"net/http"
	"os"
	"time"

	"jobportal/internal/config"
	"jobportal/internal/report"
	"jobportal/internal/web"
)

func randomToken(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// shutdownHandler stops the server for a local caller that knows the token written to the data dir.
func shutdownHandler(token *string, srv *http.Server) http.HandlerFunc {
	stop := func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("shutting down\n"))
		log.Printf("level=info msg=\"shutdown requested\" remote=%s", r.RemoteAddr)

		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(ctx)
		}()
	}
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.Header().Set("Allow", http.MethodPost)
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		web.RequireOps(*token, stop)(w, r)
	}
}

// useReportFonts swaps in operator-supplied TTFs; without report.font_regular the embedded faces stay.
func useReportFonts(cfg config.Config) error {
	if cfg.Report.FontRegular == "" {
		return nil
	}
	regular, err := os.ReadFile(cfg.Report.FontRegular)
	if err != nil {
		return err
	}
	var bold []byte
	if cfg.Report.FontBold != "" {
		if bold, err = os.ReadFile(cfg.Report.FontBold); err != nil {
			return err
		}
	}
	if err := report.UseFonts(report.Fonts{Regular: regular, Bold: bold}); err != nil {
		return err
	}
	log.Printf("level=info msg=\"report fonts loaded\" regular=%s bold=%s", cfg.Report.FontRegular, cfg.Report.FontBold)
	return nil
}
