package web

import (
	"bytes"
	"io"
	"log"
	"net/http"
	"strconv"
)

// writePDF lays out the whole document before sending headers so a layout error is still a clean 500.
func writePDF(w http.ResponseWriter, r *http.Request, filename string, build func(io.Writer) error) {
	var buf bytes.Buffer
	if err := build(&buf); err != nil {
		log.Printf("level=error msg=\"pdf failed\" request_id=%s file=%s err=%v", RequestIDFrom(r.Context()), filename, err)
		http.Error(w, "could not generate the report", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.Header().Set("Cache-Control", "no-store")
	_, _ = buf.WriteTo(w)
}
