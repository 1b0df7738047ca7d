package domain

// Worker is a roster entry. ID is a URL-safe slug assigned on registration
// and never changes afterwards.
type Worker struct {
	ID   string `json:"id" bson:"_id" yaml:"id"`
	Name string `json:"name" bson:"name" yaml:"name"`
}
