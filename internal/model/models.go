package model

// All lists every table the service owns, in creation order.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Project{},
		&GenerationLog{},
	}
}
