package lifecycle

import (
	"context"
	"fmt"
	"sort"
	"time"

	"gorm.io/gorm"

	"github.com/ZetallicA/assetflow/pkg/assets"
)

// EventTypeFieldsUpdated marks an inline edit of asset record fields that
// does not touch the lifecycle state.
const EventTypeFieldsUpdated = "FieldsUpdated"

// FieldsUpdatedPayload records the edited field names and their new values.
type FieldsUpdatedPayload struct {
	Fields map[string]string `json:"fields"`
}

// editableFieldSetters is the closed set of asset fields an inline edit may
// touch, each with an explicit setter. Lifecycle, location, version, and
// audit columns are deliberately absent; they move only through engine
// operations.
var editableFieldSetters = map[string]func(*assets.AssetRecord, string){
	"serialNumber":    func(a *assets.AssetRecord, v string) { a.SerialNumber = v },
	"manufacturer":    func(a *assets.AssetRecord, v string) { a.Manufacturer = v },
	"model":           func(a *assets.AssetRecord, v string) { a.Model = v },
	"category":        func(a *assets.AssetRecord, v string) { a.Category = v },
	"purchaseOrder":   func(a *assets.AssetRecord, v string) { a.PurchaseOrder = v },
	"notes":           func(a *assets.AssetRecord, v string) { a.Notes = v },
	"ipAddress":       func(a *assets.AssetRecord, v string) { a.IPAddress = v },
	"macAddress":      func(a *assets.AssetRecord, v string) { a.MACAddress = v },
	"wallPort":        func(a *assets.AssetRecord, v string) { a.WallPort = v },
	"switchName":      func(a *assets.AssetRecord, v string) { a.SwitchName = v },
	"switchPort":      func(a *assets.AssetRecord, v string) { a.SwitchPort = v },
	"netName":         func(a *assets.AssetRecord, v string) { a.NetName = v },
	"assignedToUser":  func(a *assets.AssetRecord, v string) { a.AssignedToUser = v },
	"assignedToEmail": func(a *assets.AssetRecord, v string) { a.AssignedToEmail = v },
	"phoneNumber":     func(a *assets.AssetRecord, v string) { a.PhoneNumber = v },
	"extension":       func(a *assets.AssetRecord, v string) { a.Extension = v },
}

// EditableFields returns the sorted names of fields UpdateAssetFields
// accepts.
func EditableFields() []string {
	names := make([]string, 0, len(editableFieldSetters))
	for name := range editableFieldSetters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// UpdateAssetFields applies an inline edit to an asset. Every requested
// field must be in the editable set and the asset must not be in the
// terminal state; on success the edit and one FieldsUpdated event commit
// together.
func (e *Engine) UpdateAssetFields(ctx context.Context, assetTag string, fields map[string]string, actor string) (*assets.AssetRecord, error) {
	if len(fields) == 0 {
		return nil, &ValidationError{Field: "fields", Message: "at least one field is required"}
	}
	for name := range fields {
		if _, ok := editableFieldSetters[name]; !ok {
			return nil, &ValidationError{
				Field:   name,
				Message: fmt.Sprintf("field %q is not editable", name),
			}
		}
	}

	var result *assets.AssetRecord
	err := e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		store := assets.NewAssetStore(tx)
		a, err := store.GetByTag(assetTag)
		if err != nil {
			return err
		}
		if a == nil {
			return fmt.Errorf("%s: %w", assetTag, assets.ErrAssetNotFound)
		}
		if !a.IsEditable() {
			return &IneligibleError{
				Op:     "update fields",
				Reason: fmt.Sprintf("asset %s is %s", assetTag, a.LifecycleState),
			}
		}

		for name, value := range fields {
			editableFieldSetters[name](a, value)
		}
		a.UpdatedAt = time.Now().UTC()
		a.UpdatedBy = actor

		if err := store.Save(a); err != nil {
			return err
		}

		event, err := assets.NewEvent(assetTag, EventTypeFieldsUpdated, FieldsUpdatedPayload{
			Fields: fields,
		}, actor)
		if err != nil {
			return err
		}
		if err := assets.NewEventStore(tx).Append(event); err != nil {
			return err
		}

		result = a
		return nil
	})
	if err != nil {
		return nil, err
	}
	e.logger.Info("asset fields updated",
		"assetTag", assetTag,
		"fields", len(fields),
		"actor", actor)
	return result, nil
}
