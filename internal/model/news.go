package model

// NewsArticle is a classified headline from an RSS feed.
type NewsArticle struct {
	ID       int      `json:"id"`
	Title    string   `json:"title"`
	Summary  string   `json:"summary"`
	Category string   `json:"cat"`
	Impact   string   `json:"impact"`
	Time     string   `json:"time"`
	Source   string   `json:"source"`
	Affected []string `json:"affected"`
	Link     string   `json:"link"`
}
