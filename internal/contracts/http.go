// Package contracts defines the wire DTOs shared between the http adapter
// and its clients.
package contracts

// SuccessResponse is the envelope for 2xx responses.
type SuccessResponse struct {
	Status string `json:"status"`
	Data   any    `json:"data,omitempty"`
}

// ErrorResponse is the envelope for request-level failures. Batch work
// endpoints do not use it for per-item failures; those stay inside the 200
// payload.
type ErrorResponse struct {
	Status  string `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type QRCheckRequest struct {
	QRCode string `json:"qrCode"`
}

type CreateCylinderRequest struct {
	SerialNumber  string `json:"serialNumber"`
	GasType       string `json:"gasType"`
	ContainerType string `json:"containerType"`
	Capacity      string `json:"capacity"`
	Location      string `json:"location"`
	Status        string `json:"status"`
	Memo          string `json:"memo"`
}

// UpdateCylinderRequest is a field-level patch; absent fields stay untouched.
// The id travels in the body, matching the collection-style PUT.
type UpdateCylinderRequest struct {
	ID            string  `json:"id"`
	SerialNumber  *string `json:"serialNumber,omitempty"`
	GasType       *string `json:"gasType,omitempty"`
	ContainerType *string `json:"containerType,omitempty"`
	Capacity      *string `json:"capacity,omitempty"`
	Location      *string `json:"location,omitempty"`
	Memo          *string `json:"memo,omitempty"`
}

type CreateCustomerRequest struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

// WorkRequest submits one action over a set of cylinders. CustomerID is
// required for DELIVERY and COLLECTION.
type WorkRequest struct {
	Action      string   `json:"action"`
	CylinderIDs []string `json:"cylinderIds"`
	CustomerID  string   `json:"customerId,omitempty"`
}
