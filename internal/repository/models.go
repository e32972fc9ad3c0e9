package repository

import (
	"github.com/jackc/pgx/v5/pgtype"
)

type User struct {
	ID           pgtype.UUID
	Email        string
	Username     string
	PasswordHash string
	FirstName    string
	LastName     string
	Role         string
	IsActive     bool
	LastLoginAt  pgtype.Timestamptz
	CreatedAt    pgtype.Timestamptz
	UpdatedAt    pgtype.Timestamptz
}

type Category struct {
	ID             pgtype.UUID
	Name           string
	Slug           string
	Description    string
	ImageUrl       string
	IsActive       bool
	ExternalSource pgtype.Text
	ExternalID     pgtype.Text
	CreatedAt      pgtype.Timestamptz
	UpdatedAt      pgtype.Timestamptz
}

type Product struct {
	ID                  pgtype.UUID
	Title               string
	Description         string
	Price               pgtype.Numeric
	ImageUrl            string
	CategoryID          pgtype.UUID
	IsActive            bool
	StockQuantity       int32
	ExternalSource      pgtype.Text
	ExternalID          pgtype.Text
	ExternalRating      pgtype.Numeric
	ExternalRatingCount int32
	CreatedAt           pgtype.Timestamptz
	UpdatedAt           pgtype.Timestamptz
}

type Cart struct {
	ID        pgtype.UUID
	UserID    pgtype.UUID
	IsActive  bool
	CreatedAt pgtype.Timestamptz
	UpdatedAt pgtype.Timestamptz
}

type CartItem struct {
	ID        pgtype.UUID
	CartID    pgtype.UUID
	ProductID pgtype.UUID
	Quantity  int32
	UnitPrice pgtype.Numeric
	AddedAt   pgtype.Timestamptz
	UpdatedAt pgtype.Timestamptz
}

type Coupon struct {
	ID                 pgtype.UUID
	Code               string
	Description        string
	DiscountPercentage pgtype.Numeric
	MaxDiscountAmount  pgtype.Numeric
	MinimumOrderAmount pgtype.Numeric
	ValidFrom          pgtype.Timestamptz
	ValidTo            pgtype.Timestamptz
	UsageLimit         int32
	UsedCount          int32
	IsActive           bool
	CreatedAt          pgtype.Timestamptz
	UpdatedAt          pgtype.Timestamptz
}

type Order struct {
	ID              pgtype.UUID
	OrderNumber     string
	UserID          pgtype.UUID
	Status          string
	Subtotal        pgtype.Numeric
	DiscountAmount  pgtype.Numeric
	Total           pgtype.Numeric
	CouponCode      pgtype.Text
	ShippingAddress string
	CreatedAt       pgtype.Timestamptz
	UpdatedAt       pgtype.Timestamptz
}

type OrderItem struct {
	ID           pgtype.UUID
	OrderID      pgtype.UUID
	ProductID    pgtype.UUID
	ProductTitle string
	Quantity     int32
	UnitPrice    pgtype.Numeric
	LineTotal    pgtype.Numeric
}

type Review struct {
	ID         pgtype.UUID
	ProductID  pgtype.UUID
	UserID     pgtype.UUID
	Rating     int16
	Comment    string
	IsApproved bool
	CreatedAt  pgtype.Timestamptz
	UpdatedAt  pgtype.Timestamptz
}

type WishlistItem struct {
	ID        pgtype.UUID
	UserID    pgtype.UUID
	ProductID pgtype.UUID
	AddedAt   pgtype.Timestamptz
}
