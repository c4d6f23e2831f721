package domain

// MasterRecord is the shape shared by every master data kind.
type MasterRecord struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Code        string `json:"code,omitempty"`
	Description string `json:"description,omitempty"`
	SortOrder   int    `json:"sortOrder,omitempty"`
	Active      bool   `json:"active"`
}

// MasterKind describes one master data screen and its API collection.
type MasterKind struct {
	Slug            string
	Title           string
	Singular        string
	APIPath         string
	UsesCode        bool
	CodeRequired    bool
	UsesDescription bool
	UsesSortOrder   bool
}

var masterKinds = []MasterKind{
	{Slug: "skills", Title: "Skills", Singular: "Skill", APIPath: "/skills", UsesDescription: true},
	{Slug: "posts", Title: "Posts", Singular: "Post", APIPath: "/posts", UsesCode: true, CodeRequired: true, UsesDescription: true},
	{Slug: "degree-levels", Title: "Degree levels", Singular: "Degree level", APIPath: "/degree-levels", UsesSortOrder: true},
	{Slug: "outsourcing-categories", Title: "Outsourcing categories", Singular: "Outsourcing category", APIPath: "/outsourcing-categories", UsesDescription: true},
	{Slug: "zones", Title: "Zones", Singular: "Zone", APIPath: "/zones", UsesCode: true, CodeRequired: true},
	{Slug: "organizations", Title: "Organizations", Singular: "Organization", APIPath: "/organizations", UsesCode: true, UsesDescription: true},
	{Slug: "institutions", Title: "Institutions", Singular: "Institution", APIPath: "/institutions", UsesCode: true},
}

func MasterKinds() []MasterKind {
	out := make([]MasterKind, len(masterKinds))
	copy(out, masterKinds)
	return out
}

func LookupMasterKind(slug string) (MasterKind, bool) {
	for _, k := range masterKinds {
		if k.Slug == slug {
			return k, true
		}
	}
	return MasterKind{}, false
}
