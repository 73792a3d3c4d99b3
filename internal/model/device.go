package model

// DeviceInfo holds the structured attributes extracted from a stored
// device page.
type DeviceInfo struct {
	// URL is the page the attributes were extracted from.
	URL string `json:"url"`

	// ModelName is the marketing name from the page heading.
	ModelName string `json:"model_name"`

	// Status is the launch status (e.g. "Available. Released 2024, January").
	Status string `json:"status"`

	// OS is the operating system line.
	OS string `json:"os"`

	// Model lists the model numbers.
	Model string `json:"model"`

	// Price is the indicative price text.
	Price string `json:"price"`
}

// Row returns the attributes in report column order.
func (d DeviceInfo) Row() []string {
	return []string{d.ModelName, d.Status, d.OS, d.Model, d.Price}
}

// DeviceColumns are the report column names matching DeviceInfo.Row.
var DeviceColumns = []string{"model_name", "status", "os", "model", "price"}
