package handler

// --- Request / Response types ---

type credentialsRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password"     validate:"required"`
}

// saleRequest uses pointers so that a missing field can be told apart from
// an explicit zero.
type saleRequest struct {
	Design   *string  `json:"design"   validate:"required"`
	Prix     *float64 `json:"prix"     validate:"required,gte=0"`
	Quantite *int     `json:"quantite" validate:"required,gte=0,lte=2147483647"`
}

type userResponse struct {
	ID                 int64  `json:"id"`
	Username           string `json:"username"`
	Role               string `json:"role"`
	MustRotatePassword bool   `json:"must_rotate_password"`
	CreatedAt          string `json:"created_at"`
}

type loginResponse struct {
	Token     string       `json:"token"`
	TokenType string       `json:"token_type"`
	User      userResponse `json:"user"`
}

type saleResponse struct {
	NumProduit int64   `json:"numProduit"`
	Design     string  `json:"design"`
	Prix       float64 `json:"prix"`
	Quantite   int     `json:"quantite"`
	CreatedAt  string  `json:"created_at"`
	UpdatedAt  string  `json:"updated_at"`
}

// errorResponse mirrors the envelope rendered by the API error handler and
// exists for the OpenAPI doc.
type errorResponse struct {
	Code    string   `json:"code"`
	Error   string   `json:"error"`
	Details []string `json:"details,omitempty"`
}
