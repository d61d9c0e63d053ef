package models

// ModelRegistry lists every model handled by --auto-migrate.
var ModelRegistry = []any{
	&StorageSlot{},
}
