package dynamo

// DynamoDB attribute and index names shared by the repositories and Bootstrap.
const (
	attrUserID    = "user_id"
	attrEmail     = "email"
	attrPlantID   = "plant_id"
	attrUserEmail = "user_email"
	attrUpdatedAt = "updated_at"

	indexEmail = "email-index"
)
