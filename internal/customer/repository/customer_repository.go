package repository

import (
	"errors"

	customerdomain "github.com/vraj-isotiya/topcitylight/internal/customer/domain"

	"gorm.io/gorm"
)

// ErrCustomerNotFound is returned when a customer id does not resolve.
var ErrCustomerNotFound = errors.New("customer not found")

// CustomerRepository exposes the read paths the mail core needs.
type CustomerRepository interface {
	FindByID(id string) (*customerdomain.Customer, error)
}

// UserRepository resolves the internal sender of a thread.
type UserRepository interface {
	FindByID(id string) (*customerdomain.User, error)
}

// customerRepository implements CustomerRepository interface
type customerRepository struct {
	db *gorm.DB
}

// NewCustomerRepository creates a new instance of customerRepository
func NewCustomerRepository(db *gorm.DB) CustomerRepository {
	return &customerRepository{
		db: db,
	}
}

func (r *customerRepository) FindByID(id string) (*customerdomain.Customer, error) {
	var customer customerdomain.Customer
	err := r.db.Where("id = ?", id).First(&customer).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCustomerNotFound
		}
		return nil, err
	}
	return &customer, nil
}

// userRepository implements UserRepository interface
type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new instance of userRepository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{
		db: db,
	}
}

func (r *userRepository) FindByID(id string) (*customerdomain.User, error) {
	var user customerdomain.User
	err := r.db.Where("id = ?", id).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}
