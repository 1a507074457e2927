package handlers

import (
	"net/http"
	"strings"

	"factory_crm_backend/internal/models"
	"factory_crm_backend/internal/services"

	"github.com/gin-gonic/gin"
)

// ClientHandler holds the client service.
type ClientHandler struct {
	clientService services.ClientService
}

// NewClientHandler creates a new ClientHandler.
func NewClientHandler(cs services.ClientService) *ClientHandler {
	return &ClientHandler{clientService: cs}
}

// CreateClient handles the creation of a new client.
func (h *ClientHandler) CreateClient(c *gin.Context) {
	var req services.CreateClientRequest
	if !bindJSON(c, &req, "CreateClient") {
		return
	}
	client, err := h.clientService.CreateClient(req)
	if err != nil {
		respondServiceError(c, err, "CreateClient", "Failed to create client.")
		return
	}
	c.JSON(http.StatusCreated, client)
}

// GetClients handles fetching clients with pagination and an optional search term.
func (h *ClientHandler) GetClients(c *gin.Context) {
	page, pageSize, ok := parsePagination(c)
	if !ok {
		return
	}
	var search *string
	if s := strings.TrimSpace(c.Query("search")); s != "" {
		search = &s
	}
	clients, total, err := h.clientService.GetClients(page, pageSize, search)
	if err != nil {
		respondServiceError(c, err, "GetClients", "Failed to fetch clients.")
		return
	}
	if clients == nil {
		clients = []models.Client{}
	}
	respondList(c, clients, total, page, pageSize)
}

// GetClientByID handles fetching a single client by ID.
func (h *ClientHandler) GetClientByID(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	client, err := h.clientService.GetClientByID(id)
	if err != nil {
		respondServiceError(c, err, "GetClientByID", "Failed to fetch client.")
		return
	}
	c.JSON(http.StatusOK, client)
}

// UpdateClient handles updating an existing client.
func (h *ClientHandler) UpdateClient(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req services.UpdateClientRequest
	if !bindJSON(c, &req, "UpdateClient") {
		return
	}
	client, err := h.clientService.UpdateClient(id, req)
	if err != nil {
		respondServiceError(c, err, "UpdateClient", "Failed to update client.")
		return
	}
	c.JSON(http.StatusOK, client)
}
