package domain

import "time"

// Plant is a catalog document. The API treats it as opaque apart from the
// identifier and the optional image key.
type Plant map[string]interface{}

// Catalog document attributes the API reads.
const (
	PlantIDAttr  = "plant_id"
	ImageKeyAttr = "image_key"
	ImageURLAttr = "image_url"
)

// ID returns the document identifier, or "" when absent.
func (p Plant) ID() string {
	id, _ := p[PlantIDAttr].(string)
	return id
}

// ImageKey returns the object key of the plant image, or "" when absent.
func (p Plant) ImageKey() string {
	k, _ := p[ImageKeyAttr].(string)
	return k
}

// SavedPlant links a user identity to a catalog document.
// (UserEmail, PlantID) is unique.
type SavedPlant struct {
	UserEmail string    `json:"user_email" dynamodbav:"user_email"`
	PlantID   string    `json:"plant_id" dynamodbav:"plant_id"`
	SavedAt   time.Time `json:"saved_at" dynamodbav:"saved_at"`
}

// SavePlantRequest is the body of /savePlant.
type SavePlantRequest struct {
	ID string `json:"id" validate:"required"`
}
