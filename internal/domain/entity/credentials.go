package entity

// Credentials holds what the billing client needs to authenticate.
// When AccessKeyID is empty the shared AWS configuration is used, optionally
// narrowed to Profile.
type Credentials struct {
	AccessKeyID     string `json:"AWS_ACCESS_KEY"`
	SecretAccessKey string `json:"AWS_SECRET_KEY"`
	Profile         string `json:"-"`
}

// IsStatic reports whether explicit access keys are present.
func (c Credentials) IsStatic() bool {
	return c.AccessKeyID != "" && c.SecretAccessKey != ""
}
