package dto

// InviteSupplierRequest input of the invite surface. Field names kept
// compatible with the legacy function payload.
type InviteSupplierRequest struct {
	Email                    string  `json:"email" validate:"required,email"`
	InvitingCompanyID        string  `json:"invitingCompanyId" validate:"required,uuid"`
	InvitingUserID           string  `json:"invitingUserId" validate:"required,uuid"`
	SupplierName             string  `json:"supplierName" validate:"required,min=1"`
	ContactName              string  `json:"contactName"`
	InvitedSupplierCompanyID *string `json:"invited_supplier_company_id" validate:"omitempty,uuid"`
}

// InviteSupplierResponse output of the invite surface.
type InviteSupplierResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// AcceptInviteRequest input to accept an invitation and create the account.
type AcceptInviteRequest struct {
	Token     string `json:"token" validate:"required"`
	Password  string `json:"password" validate:"required,min=8"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// NotificationRequest payload of the notification surface. Type is the
// discriminator; Record carries the relevant row.
type NotificationRequest struct {
	Type   string                 `json:"type" validate:"required"`
	Record map[string]interface{} `json:"record"`
	Data   map[string]interface{} `json:"data"`
}
