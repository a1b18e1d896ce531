package models

// All returns every model for AutoMigrate, parents first.
func All() []interface{} {
	return []interface{}{
		&User{},
		&RefreshToken{},
		&Tour{},
		&Panorama{},
		&Hotspot{},
		&SystemLog{},
	}
}
