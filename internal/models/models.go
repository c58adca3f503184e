package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	StatusPending       = "PENDING"
	StatusInPreparation = "IN_PREPARATION"
	StatusInTransit     = "IN_TRANSIT"
	StatusDelivered     = "DELIVERED"
	StatusCancelled     = "CANCELLED"
)

var OrderStatuses = []string{
	StatusPending,
	StatusInPreparation,
	StatusInTransit,
	StatusDelivered,
	StatusCancelled,
}

func ValidStatus(s string) bool {
	for _, known := range OrderStatuses {
		if s == known {
			return true
		}
	}
	return false
}

type User struct {
	ID           string  `gorm:"primaryKey"      json:"id"`
	Name         string  `gorm:"not null"        json:"nome"`
	Email        string  `gorm:"unique;not null" json:"email"`
	PasswordHash string  `gorm:"not null"        json:"-"`
	Phone        string  `gorm:"not null"        json:"telefone"`
	Address      string  `gorm:"not null"        json:"endereco"`
	RecoveryCode *string `json:"-"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

type Merchandise struct {
	ID          int     `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string  `gorm:"not null"                 json:"nome"`
	Description string  `gorm:"not null"                 json:"descricao"`
	Price       float64 `gorm:"not null"                 json:"preco"`
}

type Order struct {
	ID            int          `gorm:"primaryKey;autoIncrement" json:"id"`
	Quantity      int          `gorm:"not null"                 json:"quantity"`
	Status        string       `gorm:"not null"                 json:"status"`
	MerchandiseID int          `gorm:"index;not null"           json:"merchandise_id"`
	UserID        string       `gorm:"index;not null"           json:"user_id"`
	MotoboyID     *int         `json:"motoboy_id"`
	User          *User        `gorm:"foreignKey:UserID"        json:"user,omitempty"`
	Merchandise   *Merchandise `gorm:"foreignKey:MerchandiseID" json:"merchandise,omitempty"`
}
