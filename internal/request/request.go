// internal/request/request.go
//
// Wire shapes for service requests and the service-type enumeration.
// Field names mirror the backend JSON contract exactly; the client never
// invents fields the server would not produce.

package request

// ServiceType is the fixed category enumeration for a request.
type ServiceType string

const (
	ServicePlumbing   ServiceType = "plumbing"
	ServiceElectrical ServiceType = "electrical"
	ServiceCarpentry  ServiceType = "carpentry"
	ServicePainting   ServiceType = "painting"
	ServiceCleaning   ServiceType = "cleaning"
	ServiceHVAC       ServiceType = "hvac"
	ServiceAppliance  ServiceType = "appliance"
	ServiceGeneral    ServiceType = "general"
)

// ServiceTypes lists every category in menu order.
func ServiceTypes() []ServiceType {
	return []ServiceType{
		ServicePlumbing,
		ServiceElectrical,
		ServiceCarpentry,
		ServicePainting,
		ServiceHVAC,
		ServiceAppliance,
		ServiceCleaning,
		ServiceGeneral,
	}
}

// Label returns the display name for a service type.
func (t ServiceType) Label() string {
	switch t {
	case ServicePlumbing:
		return "Plumbing"
	case ServiceElectrical:
		return "Electrical"
	case ServiceCarpentry:
		return "Carpentry"
	case ServicePainting:
		return "Painting"
	case ServiceCleaning:
		return "Cleaning"
	case ServiceHVAC:
		return "HVAC"
	case ServiceAppliance:
		return "Appliances"
	case ServiceGeneral:
		return "General"
	default:
		return string(t)
	}
}

// Valid reports whether t is a known category.
func (t ServiceType) Valid() bool {
	for _, known := range ServiceTypes() {
		if t == known {
			return true
		}
	}
	return false
}

// ServiceRequest is the central marketplace entity. The requester snapshot
// (UserName, UserEmail, UserPhone) is captured at creation and immutable;
// the provider fields are populated by the backend once an assignment
// exists and must never be synthesized locally.
type ServiceRequest struct {
	ID        string `json:"id"`
	UserID    string `json:"userId"`
	UserName  string `json:"userName"`
	UserEmail string `json:"userEmail"`
	UserPhone string `json:"userPhone"`

	ServiceType   ServiceType `json:"serviceType"`
	Description   string      `json:"description"`
	Address       string      `json:"address"`
	PreferredDate string      `json:"preferredDate"`
	PreferredTime string      `json:"preferredTime,omitempty"`

	Status             Status `json:"status"`
	AssignedProviderID string `json:"assignedProviderId,omitempty"`
	ProviderName       string `json:"providerName,omitempty"`
	ProviderPhone      string `json:"providerPhone,omitempty"`
	ProviderEmail      string `json:"providerEmail,omitempty"`

	CreatedAt     string  `json:"createdAt"`
	UpdatedAt     string  `json:"updatedAt"`
	EstimatedCost float64 `json:"estimatedCost,omitempty"`
	Notes         string  `json:"notes,omitempty"`
}

// HasProvider reports whether the assignment fields carry a provider.
func (r ServiceRequest) HasProvider() bool {
	return r.AssignedProviderID != ""
}

// ConsistentAssignment checks the invariant that provider fields are
// present exactly when the status implies an assignment exists.
func (r ServiceRequest) ConsistentAssignment() bool {
	return r.HasProvider() == r.Status.Assigned()
}

// NewRequestInput is the payload for creating a request. The requester
// snapshot is filled in server-side from the session identity.
type NewRequestInput struct {
	ServiceType   ServiceType `json:"serviceType"`
	Description   string      `json:"description"`
	Address       string      `json:"address"`
	PreferredDate string      `json:"preferredDate"`
	PreferredTime string      `json:"preferredTime,omitempty"`
}
