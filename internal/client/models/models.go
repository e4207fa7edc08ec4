// Package models defines the wire and domain types shared by the pricescout
// client components. Field names and JSON tags follow the backend contract;
// every server-authoritative field is overwritten on refresh, never invented
// locally.
package models

// UserProfile is the signed-in user's profile. Only Name is client-editable;
// the rest is server-authoritative.
type UserProfile struct {
	ID            string `json:"user_id"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	Picture       string `json:"picture"`
	TotalSearches int    `json:"total_searches"`
	CreatedAt     string `json:"created_at"`
}

// PriceEntry is one platform's offer for a searched product.
type PriceEntry struct {
	Platform string `json:"platform"`
	Price    string `json:"price,omitempty"`
	Original int    `json:"original"`
	Savings  int    `json:"savings,omitempty"`
	Link     string `json:"link,omitempty"`
	Image    string `json:"image,omitempty"`
}

// ComparisonResult is the backend's answer to a product search. BestPrice is
// nil when the backend found nothing; the client renders whatever it is given
// and does not recompute it.
type ComparisonResult struct {
	Product      string       `json:"product"`
	BestPrice    *int         `json:"best_price,omitempty"`
	TotalResults int          `json:"total_results,omitempty"`
	Message      string       `json:"message,omitempty"`
	Results      []PriceEntry `json:"results"`
}

// HistoryEntry is one past search, owned by the backend.
type HistoryEntry struct {
	ID           string `json:"id"`
	Product      string `json:"product"`
	Timestamp    string `json:"timestamp"`
	ResultsCount int    `json:"results_count"`
}

// TrendingProduct is one entry of the public trending list.
type TrendingProduct struct {
	Name     string `json:"name"`
	Searches int    `json:"searches"`
}

// ArtifactSource tells where an uploadable image came from.
type ArtifactSource string

const (
	SourceCamera     ArtifactSource = "camera"
	SourceFilePicker ArtifactSource = "file-picker"
)

// CaptureArtifact is a binary image payload prepared for upload. It exists
// only between capture/selection and a successful upload or cancellation and
// is never written to durable storage.
type CaptureArtifact struct {
	Name   string
	MIME   string
	Source ArtifactSource
	Bytes  []byte
}
