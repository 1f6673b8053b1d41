// Package device provides the Device Registry for AssetFlow Core.
//
// The registry is the catalogue of every trackable asset and the single
// owner of a device's status field. It is a leaf component: it depends on
// nothing but its repository.
//
// # Architecture
//
//	┌──────────────────────────────────────────────────────────┐
//	│                      Device Registry                     │
//	│                                                          │
//	│  ┌──────────────────┐    ┌──────────────────┐            │
//	│  │     Registry     │    │    Repository    │            │
//	│  │   (registry.go)  │───▶│  (repository.go) │            │
//	│  │                  │    │                  │            │
//	│  │ • Register       │    │ • SQLite queries │            │
//	│  │ • UpdateStatus   │    │ • Unique serials │            │
//	│  │ • Find / List*   │    └──────────────────┘            │
//	│  │ • Count*         │                                    │
//	│  └──────────────────┘                                    │
//	└──────────────────────────────────────────────────────────┘
//	            ▲
//	            │ status writes
//	┌───────────┴──────────────┐
//	│  Lifecycle Coordinator   │
//	└──────────────────────────┘
//
// # Status
//
// A device is available, in_use or maintenance. The registry only persists
// the value and refuses unknown ids. Whether a transition is legal is decided
// by the lifecycle package, which is the only caller of UpdateStatus in
// production code.
//
// # Usage
//
//	repo := device.NewSQLiteRepository(db)
//	registry := device.NewRegistry(repo)
//	registry.SetLogger(log)
//
//	id, err := registry.Register(ctx, &device.Device{
//	    Name:         "ThinkPad T14",
//	    Type:         "laptop",
//	    Manufacturer: "Lenovo",
//	    SerialNumber: "PF-3X9K2",
//	})
//	if errors.Is(err, device.ErrDuplicateSerial) {
//	    // serial already registered
//	}
//
//	available, _ := registry.ListByStatus(ctx, device.StatusAvailable)
//
// # Thread Safety
//
// The Registry is safe for concurrent use. Reads take no locks and may
// observe a status that is about to change.
package device
