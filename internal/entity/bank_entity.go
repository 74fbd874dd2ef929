package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CardStatus string

const (
	CardStatusActive  CardStatus = "active"
	CardStatusBlocked CardStatus = "blocked"
)

type LoanStatus string

const (
	LoanStatusUnderReview LoanStatus = "under_review"
	LoanStatusApproved    LoanStatus = "approved"
	LoanStatusRejected    LoanStatus = "rejected"
)

type ComplaintStatus string

const (
	ComplaintStatusOpen     ComplaintStatus = "open"
	ComplaintStatusResolved ComplaintStatus = "resolved"
)

// Account holds one customer account. Balance mutations happen only inside a
// transfer transaction.
type Account struct {
	Id            uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId        uuid.UUID `gorm:"type:uuid;not null;index"`
	AccountNumber string    `gorm:"type:varchar(20);uniqueIndex;not null"`
	AccountType   string    `gorm:"type:varchar(50);not null;default:'savings'"`
	Balance       float64   `gorm:"type:numeric(14,2);not null;default:0"`
	CreatedAt     time.Time `gorm:"autoCreateTime"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime"`
}

func (Account) TableName() string {
	return "accounts"
}

type Transaction struct {
	Id          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	AccountId   uuid.UUID `gorm:"type:uuid;not null;index"`
	Reference   string    `gorm:"type:varchar(50);uniqueIndex;not null"`
	Type        string    `gorm:"type:varchar(20);not null"` // debit or credit
	Amount      float64   `gorm:"type:numeric(14,2);not null"`
	ToAccount   string    `gorm:"type:varchar(20)"`
	Description string    `gorm:"type:text"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`
}

func (Transaction) TableName() string {
	return "transactions"
}

// Card stores only the last four digits. Full PANs never enter the system.
type Card struct {
	Id        uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId    uuid.UUID  `gorm:"type:uuid;not null;index"`
	LastFour  string     `gorm:"type:varchar(4);not null"`
	CardType  string     `gorm:"type:varchar(20);not null;default:'debit'"`
	Status    CardStatus `gorm:"type:varchar(20);not null;default:'active'"`
	CreatedAt time.Time  `gorm:"autoCreateTime"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime"`
}

func (Card) TableName() string {
	return "cards"
}

type Loan struct {
	Id             uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId         uuid.UUID  `gorm:"type:uuid;not null;index"`
	ApplicationRef string     `gorm:"type:varchar(50);uniqueIndex;not null"`
	LoanType       string     `gorm:"type:varchar(50);not null"`
	Amount         float64    `gorm:"type:numeric(14,2);not null"`
	TenureMonths   int        `gorm:"not null"`
	Status         LoanStatus `gorm:"type:varchar(20);not null;default:'under_review'"`
	CreatedAt      time.Time  `gorm:"autoCreateTime"`
	UpdatedAt      time.Time  `gorm:"autoUpdateTime"`
}

func (Loan) TableName() string {
	return "loans"
}

type Complaint struct {
	Id          uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId      uuid.UUID       `gorm:"type:uuid;not null;index"`
	Reference   string          `gorm:"type:varchar(50);uniqueIndex;not null"`
	Subject     string          `gorm:"type:varchar(255);not null"`
	Description string          `gorm:"type:text;not null"`
	Category    string          `gorm:"type:varchar(50);not null"`
	Status      ComplaintStatus `gorm:"type:varchar(20);not null;default:'open'"`
	CreatedAt   time.Time       `gorm:"autoCreateTime"`
	UpdatedAt   time.Time       `gorm:"autoUpdateTime"`
	DeletedAt   gorm.DeletedAt  `gorm:"index"`
}

func (Complaint) TableName() string {
	return "complaints"
}
