package domain

// Source represents a configured feed
type Source struct {
	Name  string
	URL   string
	Badge string // emoji shown next to the source name, optional
}
