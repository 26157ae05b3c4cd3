package request

// MaxBodyBytes bounds every JSON request body
const MaxBodyBytes = 64 << 10

// SubmitSecret is the request body for PUT /api/v1/me/secret
type SubmitSecret struct {
	Secret string `json:"secret"`
}
