package repositories

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"factory_crm_backend/internal/models"
)

// ClientRepository defines the interface for client-related database operations.
type ClientRepository interface {
	CreateClient(executor SQLExecutor, client *models.Client) (int64, error)
	GetClientByID(id int64) (*models.Client, error)
	GetClients(page, pageSize int, searchTerm *string) ([]models.Client, int, error)
	UpdateClient(executor SQLExecutor, client *models.Client) error
}

type clientRepository struct {
	db *sql.DB
}

// NewClientRepository creates a new instance of ClientRepository.
func NewClientRepository(db *sql.DB) ClientRepository {
	return &clientRepository{db: db}
}

// CreateClient inserts a new client into the database.
func (r *clientRepository) CreateClient(executor SQLExecutor, client *models.Client) (int64, error) {
	query := `INSERT INTO clients (name, phone, factory_name, notes, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $5)
	          RETURNING id`
	now := time.Now()
	if err := executor.QueryRow(query, client.Name, client.Phone, client.FactoryName, client.Notes, now).Scan(&client.ID); err != nil {
		return 0, wrapDBError("creating client", err)
	}
	client.CreatedAt, client.UpdatedAt = now, now
	return client.ID, nil
}

// GetClientByID retrieves a client by their ID.
func (r *clientRepository) GetClientByID(id int64) (*models.Client, error) {
	var c models.Client
	query := `SELECT id, name, phone, factory_name, notes, created_at, updated_at FROM clients WHERE id = $1`
	if err := r.db.QueryRow(query, id).Scan(&c.ID, &c.Name, &c.Phone, &c.FactoryName, &c.Notes, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, wrapDBError(fmt.Sprintf("getting client %d", id), err)
	}
	return &c, nil
}

// GetClients retrieves a list of clients with pagination and optional search.
func (r *clientRepository) GetClients(page, pageSize int, searchTerm *string) ([]models.Client, int, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT id, name, phone, factory_name, notes, created_at, updated_at, COUNT(*) OVER() AS total_count
	                          FROM clients`)
	var args []interface{}
	argCount := 1
	if searchTerm != nil && *searchTerm != "" {
		queryBuilder.WriteString(fmt.Sprintf(" WHERE name ILIKE $%d OR phone ILIKE $%d OR factory_name ILIKE $%d", argCount, argCount, argCount))
		args = append(args, "%"+*searchTerm+"%")
		argCount++
	}
	limit, offset := pageOffset(page, pageSize)
	queryBuilder.WriteString(fmt.Sprintf(" ORDER BY name LIMIT $%d OFFSET $%d", argCount, argCount+1))
	args = append(args, limit, offset)

	rows, err := r.db.Query(queryBuilder.String(), args...)
	if err != nil {
		return nil, 0, wrapDBError("getting clients", err)
	}
	defer rows.Close()

	clients := []models.Client{}
	total := 0
	for rows.Next() {
		var c models.Client
		if err := rows.Scan(&c.ID, &c.Name, &c.Phone, &c.FactoryName, &c.Notes, &c.CreatedAt, &c.UpdatedAt, &total); err != nil {
			return nil, 0, wrapDBError("scanning client", err)
		}
		clients = append(clients, c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, wrapDBError("iterating clients", err)
	}
	return clients, total, nil
}

// UpdateClient writes the client's editable fields.
func (r *clientRepository) UpdateClient(executor SQLExecutor, client *models.Client) error {
	query := `UPDATE clients SET name = $1, phone = $2, factory_name = $3, notes = $4, updated_at = $5 WHERE id = $6`
	client.UpdatedAt = time.Now()
	result, err := executor.Exec(query, client.Name, client.Phone, client.FactoryName, client.Notes, client.UpdatedAt, client.ID)
	if err != nil {
		return wrapDBError(fmt.Sprintf("updating client %d", client.ID), err)
	}
	return requireRowsAffected("updating client", result)
}
