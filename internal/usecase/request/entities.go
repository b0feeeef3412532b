package request

type ItemInput struct {
	ProductName string
	Category    *string
	Quantity    int
	Unit        *string
	Notes       *string
}

type CreateInput struct {
	FromStoreID      string
	ToStoreID        string
	ActorID          string
	Items            []ItemInput
	Notes            *string
	BorrowerPhotoURL *string
}
