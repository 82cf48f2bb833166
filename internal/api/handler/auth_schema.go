package handler

import "github.com/quotecraft/quoting-system/internal/core/domain"

type loginRequest struct {
	Identifier string `json:"identifier"`
	Email      string `json:"email"`
	Username   string `json:"username"`
	Password   string `json:"password" validate:"required"`
}

// identifier returns the first non-empty login name in payload order.
func (r loginRequest) identifier() string {
	for _, v := range []string{r.Identifier, r.Email, r.Username} {
		if v != "" {
			return v
		}
	}
	return ""
}

type registerRequest struct {
	Username    string `json:"username"    validate:"required,min=3,max=64"`
	Email       string `json:"email"       validate:"required,email"`
	Password    string `json:"password"    validate:"required,min=8"`
	Name        string `json:"name"        validate:"max=128"`
	CompanyName string `json:"companyName" validate:"required_with=IndustryID,max=128"`
	IndustryID  string `json:"industryId"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// authResponse is the envelope returned by login, register and refresh.
// ExpiresIn is the access token lifetime in milliseconds.
type authResponse struct {
	Success      bool         `json:"success"`
	AccessToken  string       `json:"accessToken"`
	RefreshToken string       `json:"refreshToken"`
	ExpiresIn    int64        `json:"expiresIn"`
	User         *domain.User `json:"user"`
}

type logoutResponse struct {
	Success bool `json:"success"`
}

type statusResponse struct {
	Authenticated bool         `json:"authenticated"`
	User          *domain.User `json:"user,omitempty"`
}
