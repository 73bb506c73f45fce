package assets

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// JSONPayload is a custom GORM type storing an arbitrary JSON document as text.
type JSONPayload json.RawMessage

// Scan implements the sql.Scanner interface for JSONPayload.
func (p *JSONPayload) Scan(value any) error {
	if value == nil {
		*p = nil
		return nil
	}
	switch v := value.(type) {
	case string:
		*p = JSONPayload(v)
	case []byte:
		*p = JSONPayload(append([]byte(nil), v...))
	default:
		return fmt.Errorf("unsupported type for JSONPayload: %T", value)
	}
	return nil
}

// Value implements the driver.Valuer interface for JSONPayload.
func (p JSONPayload) Value() (driver.Value, error) {
	if p == nil {
		return nil, nil
	}
	return string(p), nil
}

// MarshalJSON passes the raw document through unchanged.
func (p JSONPayload) MarshalJSON() ([]byte, error) {
	if p == nil {
		return []byte("null"), nil
	}
	return []byte(p), nil
}

// UnmarshalJSON stores the raw document unchanged.
func (p *JSONPayload) UnmarshalJSON(data []byte) error {
	*p = JSONPayload(append([]byte(nil), data...))
	return nil
}

// AssetRecord is the central persisted entity. The asset tag is the primary
// key; all transfer, salvage, and event records reference assets by tag.
type AssetRecord struct {
	AssetTag string `gorm:"primaryKey;column:asset_tag;type:varchar(64)" json:"assetTag"`

	// Lifecycle.
	LifecycleState string `gorm:"column:lifecycle_state;index:idx_assets_state_site,priority:1;not null" json:"lifecycleState"`

	// Location.
	CurrentSite            string `gorm:"column:current_site;index:idx_assets_state_site,priority:2" json:"currentSite,omitempty"`
	CurrentStorageLocation string `gorm:"column:current_storage_location" json:"currentStorageLocation,omitempty"`
	Location               string `gorm:"column:location" json:"location,omitempty"`
	Floor                  string `gorm:"column:floor" json:"floor,omitempty"`
	Desk                   string `gorm:"column:desk" json:"desk,omitempty"`
	CurrentDesk            string `gorm:"column:current_desk" json:"currentDesk,omitempty"`

	// Deployment.
	DeployedAt      *time.Time `gorm:"column:deployed_at" json:"deployedAt,omitempty"`
	DeployedBy      string     `gorm:"column:deployed_by" json:"deployedBy,omitempty"`
	DeployedToUser  string     `gorm:"column:deployed_to_user" json:"deployedToUser,omitempty"`
	DeployedToEmail string     `gorm:"column:deployed_to_email" json:"deployedToEmail,omitempty"`

	// Shipment.
	ReadyForPickupAt *time.Time `gorm:"column:ready_for_pickup_at" json:"readyForPickupAt,omitempty"`
	ReadyForPickupBy string     `gorm:"column:ready_for_pickup_by" json:"readyForPickupBy,omitempty"`
	PickedUpAt       *time.Time `gorm:"column:picked_up_at" json:"pickedUpAt,omitempty"`
	PickedUpBy       string     `gorm:"column:picked_up_by" json:"pickedUpBy,omitempty"`
	DestinationSite  string     `gorm:"column:destination_site" json:"destinationSite,omitempty"`
	Carrier          string     `gorm:"column:carrier" json:"carrier,omitempty"`
	TrackingNumber   string     `gorm:"column:tracking_number" json:"trackingNumber,omitempty"`
	DeliveredAt      *time.Time `gorm:"column:delivered_at" json:"deliveredAt,omitempty"`
	DeliveredBy      string     `gorm:"column:delivered_by" json:"deliveredBy,omitempty"`

	// Salvage.
	SalvageBatchID string `gorm:"column:salvage_batch_id;index" json:"salvageBatchId,omitempty"`

	// Sensitive and reusable fields, cleared when the asset enters SalvagePending.
	IPAddress        string `gorm:"column:ip_address" json:"ipAddress,omitempty"`
	MACAddress       string `gorm:"column:mac_address" json:"macAddress,omitempty"`
	WallPort         string `gorm:"column:wall_port" json:"wallPort,omitempty"`
	SwitchName       string `gorm:"column:switch_name" json:"switchName,omitempty"`
	SwitchPort       string `gorm:"column:switch_port" json:"switchPort,omitempty"`
	NetName          string `gorm:"column:net_name" json:"netName,omitempty"`
	AssignedToUser   string `gorm:"column:assigned_to_user" json:"assignedToUser,omitempty"`
	AssignedToEmail  string `gorm:"column:assigned_to_email" json:"assignedToEmail,omitempty"`
	PhoneNumber      string `gorm:"column:phone_number" json:"phoneNumber,omitempty"`
	Extension        string `gorm:"column:extension" json:"extension,omitempty"`

	// Procurement and identification, retained for the full record lifetime.
	SerialNumber  string `gorm:"column:serial_number" json:"serialNumber,omitempty"`
	Manufacturer  string `gorm:"column:manufacturer" json:"manufacturer,omitempty"`
	Model         string `gorm:"column:model" json:"model,omitempty"`
	Category      string `gorm:"column:category" json:"category,omitempty"`
	PurchaseOrder string `gorm:"column:purchase_order" json:"purchaseOrder,omitempty"`
	Notes         string `gorm:"column:notes" json:"notes,omitempty"`

	// Optimistic concurrency token, checked on every save.
	Version int `gorm:"column:version;not null;default:0" json:"version"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"column:updated_at" json:"updatedAt"`
	UpdatedBy string    `gorm:"column:updated_by" json:"updatedBy,omitempty"`
}

// TableName returns the GORM table name.
func (AssetRecord) TableName() string { return "assets" }

// IsEditable reports whether the asset may still be modified. Salvaged is the
// terminal state; everything else remains editable.
func (a *AssetRecord) IsEditable() bool {
	return a.LifecycleState != "Salvaged"
}

// AssetEventRecord is an immutable, append-only lifecycle log entry. Events
// are owned by the asset they describe but are never deleted with it.
type AssetEventRecord struct {
	ID        string      `gorm:"primaryKey;column:id;type:varchar(36)" json:"id"`
	AssetTag  string      `gorm:"column:asset_tag;index:idx_events_asset_time,priority:1;not null" json:"assetTag"`
	EventType string      `gorm:"column:event_type;index;not null" json:"eventType"`
	Payload   JSONPayload `gorm:"column:payload;type:text" json:"payload,omitempty"`
	CreatedBy string      `gorm:"column:created_by;not null" json:"createdBy"`
	CreatedAt time.Time   `gorm:"column:created_at;index:idx_events_asset_time,priority:2;autoCreateTime" json:"createdAt"`
}

// TableName returns the GORM table name.
func (AssetEventRecord) TableName() string { return "asset_events" }

// DecodePayload unmarshals the event payload into dst.
func (e *AssetEventRecord) DecodePayload(dst any) error {
	if len(e.Payload) == 0 {
		return fmt.Errorf("event %s has no payload", e.ID)
	}
	return json.Unmarshal([]byte(e.Payload), dst)
}

// NewEvent builds an event record with a fresh ID and the payload marshalled
// to JSON. CreatedAt is assigned by the database on insert.
func NewEvent(assetTag, eventType string, payload any, actor string) (*AssetEventRecord, error) {
	rec := &AssetEventRecord{
		ID:        newID(),
		AssetTag:  assetTag,
		EventType: eventType,
		CreatedBy: actor,
	}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("marshal event payload: %w", err)
		}
		rec.Payload = JSONPayload(data)
	}
	return rec, nil
}

// Transfer sub-states.
const (
	TransferStateDraft    = "Draft"
	TransferStateShipped  = "Shipped"
	TransferStateReceived = "Received"
	TransferStateClosed   = "Closed" // reserved, not reached by any operation
)

// AssetTransferRecord models one physical shipment leg of an asset between
// two sites. Created in Draft, mutated only by ship/receive, never deleted.
type AssetTransferRecord struct {
	ID             string `gorm:"primaryKey;column:id;type:varchar(36)" json:"id"`
	AssetTag       string `gorm:"column:asset_tag;index;not null" json:"assetTag"`
	FromSite       string `gorm:"column:from_site;index" json:"fromSite,omitempty"`
	ToSite         string `gorm:"column:to_site;index;not null" json:"toSite"`
	FromStorageBin string `gorm:"column:from_storage_bin" json:"fromStorageBin,omitempty"`
	ToStorageBin   string `gorm:"column:to_storage_bin" json:"toStorageBin,omitempty"`
	Carrier        string `gorm:"column:carrier" json:"carrier,omitempty"`
	TrackingNumber string `gorm:"column:tracking_number;index" json:"trackingNumber,omitempty"`
	State          string `gorm:"column:state;index;not null" json:"state"`

	CreatedAt  time.Time  `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	CreatedBy  string     `gorm:"column:created_by;not null" json:"createdBy"`
	ShippedAt  *time.Time `gorm:"column:shipped_at" json:"shippedAt,omitempty"`
	ShippedBy  string     `gorm:"column:shipped_by" json:"shippedBy,omitempty"`
	ReceivedAt *time.Time `gorm:"column:received_at" json:"receivedAt,omitempty"`
	ReceivedBy string     `gorm:"column:received_by" json:"receivedBy,omitempty"`
}

// TableName returns the GORM table name.
func (AssetTransferRecord) TableName() string { return "asset_transfers" }

// SalvageBatchRecord groups assets being jointly disposed of through a vendor
// pickup. Finalization is a one-way seal.
type SalvageBatchRecord struct {
	ID                   string     `gorm:"primaryKey;column:id;type:varchar(36)" json:"id"`
	BatchCode            string     `gorm:"column:batch_code;uniqueIndex;not null" json:"batchCode"`
	PickupVendor         string     `gorm:"column:pickup_vendor;not null" json:"pickupVendor"`
	PickupManifestNumber string     `gorm:"column:pickup_manifest_number" json:"pickupManifestNumber,omitempty"`
	PickedUpAt           *time.Time `gorm:"column:picked_up_at" json:"pickedUpAt,omitempty"`
	CreatedAt            time.Time  `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	CreatedBy            string     `gorm:"column:created_by;not null" json:"createdBy"`
	FinalizedAt          *time.Time `gorm:"column:finalized_at" json:"finalizedAt,omitempty"`
	FinalizedBy          string     `gorm:"column:finalized_by" json:"finalizedBy,omitempty"`
}

// TableName returns the GORM table name.
func (SalvageBatchRecord) TableName() string { return "salvage_batches" }

// IsFinalized reports whether the batch has been sealed.
func (b *SalvageBatchRecord) IsFinalized() bool { return b.FinalizedAt != nil }
