package services

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"factory_crm_backend/internal/models"
	"factory_crm_backend/internal/repositories"
	"factory_crm_backend/pkg/utils"
)

// --- Custom Service Errors for Client ---
var (
	ErrClientNotFound    = errors.New("client not found")
	ErrPhoneNumberExists = errors.New("phone number already exists")
	ErrClientValidation  = errors.New("client data validation error")
)

var phoneRegex = regexp.MustCompile(`^\+?[0-9 ()-]{6,20}$`)

// --- Client DTOs ---
type CreateClientRequest struct {
	Name        string  `json:"name" binding:"required"`
	Phone       *string `json:"phone"`
	FactoryName *string `json:"factoryName"`
	Notes       *string `json:"notes"`
}

type UpdateClientRequest struct {
	Name        *string `json:"name"`
	Phone       *string `json:"phone"`
	FactoryName *string `json:"factoryName"`
	Notes       *string `json:"notes"`
}

// --- ClientService Interface ---
type ClientService interface {
	CreateClient(req CreateClientRequest) (*models.Client, error)
	GetClientByID(clientID int64) (*models.Client, error)
	GetClients(page, pageSize int, searchTerm *string) ([]models.Client, int, error)
	UpdateClient(clientID int64, req UpdateClientRequest) (*models.Client, error)
}

// --- clientService Implementation ---
type clientService struct {
	clientRepo repositories.ClientRepository
	tx         repositories.TxRunner
}

// NewClientService creates a new instance of ClientService.
func NewClientService(repo repositories.ClientRepository, tx repositories.TxRunner) ClientService {
	return &clientService{clientRepo: repo, tx: tx}
}

func normalizePhone(phone *string) (*string, error) {
	if phone == nil {
		return nil, nil
	}
	p := utils.NewNullString(*phone)
	if p != nil && !phoneRegex.MatchString(*p) {
		return nil, fmt.Errorf("%w: invalid phone number format", ErrClientValidation)
	}
	return p, nil
}

func (s *clientService) CreateClient(req CreateClientRequest) (*models.Client, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, ErrClientValidation
	}
	phone, err := normalizePhone(req.Phone)
	if err != nil {
		return nil, err
	}
	client := &models.Client{Name: name, Phone: phone, FactoryName: req.FactoryName, Notes: req.Notes}
	err = s.tx.WithinTx(func(exec repositories.SQLExecutor) error {
		_, err := s.clientRepo.CreateClient(exec, client)
		return err
	})
	if err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, ErrPhoneNumberExists
		}
		return nil, err
	}
	return client, nil
}

func (s *clientService) GetClientByID(clientID int64) (*models.Client, error) {
	c, err := s.clientRepo.GetClientByID(clientID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrClientNotFound
		}
		return nil, err
	}
	return c, nil
}

func (s *clientService) GetClients(page, pageSize int, searchTerm *string) ([]models.Client, int, error) {
	return s.clientRepo.GetClients(page, pageSize, searchTerm)
}

// UpdateClient edits the registry entry. Snapshots on existing orders and invoices are untouched.
func (s *clientService) UpdateClient(clientID int64, req UpdateClientRequest) (*models.Client, error) {
	client, err := s.GetClientByID(clientID)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, ErrClientValidation
		}
		client.Name = name
	}
	if req.Phone != nil {
		phone, err := normalizePhone(req.Phone)
		if err != nil {
			return nil, err
		}
		client.Phone = phone
	}
	if req.FactoryName != nil {
		client.FactoryName = utils.NewNullString(*req.FactoryName)
	}
	if req.Notes != nil {
		client.Notes = req.Notes
	}
	err = s.tx.WithinTx(func(exec repositories.SQLExecutor) error {
		return s.clientRepo.UpdateClient(exec, client)
	})
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrNotFound):
			return nil, ErrClientNotFound
		case errors.Is(err, repositories.ErrDuplicateKey):
			return nil, ErrPhoneNumberExists
		}
		return nil, err
	}
	return client, nil
}
