package tracker

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"projecttracker/internal/domain"
	"projecttracker/internal/pkg/jwt"
	"projecttracker/internal/pkg/response"
	"projecttracker/internal/pkg/validator"
	"projecttracker/internal/progress"
	"projecttracker/internal/repository"
)

var ErrClientHasActiveProjects = errors.New("client still has projects that are not completed")

type Handler struct {
	ctrl      *Controller
	jwt       *jwt.Service
	adminHash []byte
	log       *logrus.Logger
}

func NewHandler(ctrl *Controller, j *jwt.Service, adminHash []byte, log *logrus.Logger) *Handler {
	return &Handler{ctrl: ctrl, jwt: j, adminHash: adminHash, log: log}
}

// RegisterRoutes mounts the tracker API on rg. admin guards the destructive
// endpoints. Base path is /api/v1.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, admin ...gin.HandlerFunc) {
	rg.GET("/state", h.GetState)
	rg.POST("/reload", h.Reload)
	rg.POST("/reconcile", h.Reconcile)
	rg.GET("/projects/:id/summary", h.ProjectSummary)

	registerCollection(rg, h, collection[domain.Client, domain.ClientPatch]{
		path: "/clients", list: h.ctrl.Clients, id: func(v domain.Client) string { return v.ID },
		add: h.ctrl.AddClient, update: h.ctrl.UpdateClient, remove: h.deleteClient,
		fresh: func(v *domain.Client) { v.ID = "" },
	})
	registerCollection(rg, h, collection[domain.Supplier, domain.SupplierPatch]{
		path: "/suppliers", list: h.ctrl.Suppliers, id: func(v domain.Supplier) string { return v.ID },
		add: h.ctrl.AddSupplier, update: h.ctrl.UpdateSupplier, remove: h.ctrl.DeleteSupplier,
		fresh: func(v *domain.Supplier) { v.ID = "" },
	})
	registerCollection(rg, h, collection[domain.Project, domain.ProjectPatch]{
		path: "/projects", list: h.ctrl.Projects, id: func(v domain.Project) string { return v.ID },
		add: h.ctrl.AddProject, update: h.ctrl.UpdateProject, remove: h.ctrl.DeleteProject,
		fresh: func(v *domain.Project) { v.ID = "" },
	})
	registerCollection(rg, h, collection[domain.PurchaseOrder, domain.PurchaseOrderPatch]{
		path: "/purchase-orders", list: h.ctrl.PurchaseOrders, id: func(v domain.PurchaseOrder) string { return v.ID },
		add: h.ctrl.AddPurchaseOrder, update: h.ctrl.UpdatePurchaseOrder, remove: h.ctrl.DeletePurchaseOrder,
		fresh: func(v *domain.PurchaseOrder) {
			v.ID = ""
			for i := range v.Parts {
				v.Parts[i].ID = ""
			}
		},
	})
	registerCollection(rg, h, collection[domain.ExternalLink, domain.ExternalLinkPatch]{
		path: "/external-links", list: h.ctrl.ExternalLinks, id: func(v domain.ExternalLink) string { return v.ID },
		add: h.ctrl.AddExternalLink, update: h.ctrl.UpdateExternalLink, remove: h.ctrl.DeleteExternalLink,
		fresh: func(v *domain.ExternalLink) { v.ID = "" },
	})
	registerCollection(rg, h, collection[domain.Shipment, domain.ShipmentPatch]{
		path: "/shipments", list: h.ctrl.Shipments, id: func(v domain.Shipment) string { return v.ID },
		add: h.ctrl.AddShipment, update: h.ctrl.UpdateShipment, remove: h.ctrl.DeleteShipment,
		fresh: func(v *domain.Shipment) { v.ID = "" },
	})

	adminGroup := rg.Group("/admin")
	{
		adminGroup.POST("/login", h.Login)
		guarded := append(append([]gin.HandlerFunc{}, admin...), h.ClearAll)
		adminGroup.DELETE("/data", guarded...)
	}
}

// collection binds one entity kind to its routes. fresh drops the ids a client
// sent with a create; the store assigns them.
type collection[T, P any] struct {
	path   string
	list   func() []T
	id     func(T) string
	add    func(context.Context, T) (T, error)
	update func(context.Context, string, P) error
	remove func(context.Context, string) error
	fresh  func(*T)
}

func registerCollection[T, P any](rg *gin.RouterGroup, h *Handler, col collection[T, P]) {
	g := rg.Group(col.path)

	g.GET("", func(c *gin.Context) {
		response.Success(c, http.StatusOK, col.list())
	})

	g.GET("/:id", func(c *gin.Context) {
		v, ok := findByID(col, c.Param("id"))
		if !ok {
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "entity not found")
			return
		}
		response.Success(c, http.StatusOK, v)
	})

	g.POST("", func(c *gin.Context) {
		var req T
		if !bindAndValidate(c, &req) {
			return
		}
		col.fresh(&req)
		out, err := col.add(c.Request.Context(), req)
		if err != nil {
			h.writeError(c, err, out)
			return
		}
		response.Success(c, http.StatusCreated, out)
	})

	g.PATCH("/:id", func(c *gin.Context) {
		var req P
		if !bindAndValidate(c, &req) {
			return
		}
		id := c.Param("id")
		if err := col.update(c.Request.Context(), id, req); err != nil {
			h.writeError(c, err, nil)
			return
		}
		if v, ok := findByID(col, id); ok {
			response.Success(c, http.StatusOK, v)
			return
		}
		// a reload removed it meanwhile
		response.Success(c, http.StatusOK, DeletedResponse{ID: id})
	})

	g.DELETE("/:id", func(c *gin.Context) {
		id := c.Param("id")
		if err := col.remove(c.Request.Context(), id); err != nil {
			h.writeError(c, err, nil)
			return
		}
		response.Success(c, http.StatusOK, DeletedResponse{ID: id})
	})
}

func findByID[T, P any](col collection[T, P], id string) (T, bool) {
	for _, v := range col.list() {
		if col.id(v) == id {
			return v, true
		}
	}
	var zero T
	return zero, false
}

func bindAndValidate(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return false
	}
	if errs := validator.Validate(req); errs != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid request body", errs)
		return false
	}
	return true
}

func (h *Handler) GetState(c *gin.Context) {
	response.Success(c, http.StatusOK, h.ctrl.Snapshot())
}

func (h *Handler) Reload(c *gin.Context) {
	if err := h.ctrl.Reload(c.Request.Context()); err != nil {
		h.writeError(c, err, nil)
		return
	}
	response.Success(c, http.StatusOK, h.ctrl.Status())
}

func (h *Handler) Reconcile(c *gin.Context) {
	if err := h.ctrl.ReconcileProgress(c.Request.Context()); err != nil {
		h.writeError(c, err, nil)
		return
	}
	response.Success(c, http.StatusOK, h.ctrl.Status())
}

func (h *Handler) ProjectSummary(c *gin.Context) {
	id := c.Param("id")
	var project domain.Project
	found := false
	for _, p := range h.ctrl.Projects() {
		if p.ID == id {
			project, found = p, true
			break
		}
	}
	if !found {
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "project not found")
		return
	}

	orders := h.ctrl.PurchaseOrders()
	var own []domain.PurchaseOrder
	for _, po := range orders {
		if po.ProjectID == id {
			own = append(own, po)
		}
	}
	distinct := progress.DistinctPONumbers(own)
	numbers := make([]string, 0, len(distinct))
	for _, po := range distinct {
		numbers = append(numbers, po.PONumber)
	}

	response.Success(c, http.StatusOK, ProjectSummaryResponse{
		Project:        project,
		Progress:       progress.ProjectProgress(project, orders),
		PONumbers:      numbers,
		PurchaseOrders: len(own),
	})
}

// deleteClient refuses while the client still has projects that are not completed.
func (h *Handler) deleteClient(ctx context.Context, id string) error {
	for _, p := range h.ctrl.Projects() {
		if p.ClientID == id && p.IsActive() {
			return ErrClientHasActiveProjects
		}
	}
	return h.ctrl.DeleteClient(ctx, id)
}

func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}
	if err := bcrypt.CompareHashAndPassword(h.adminHash, []byte(req.Password)); err != nil {
		h.log.WithField("client_ip", c.ClientIP()).Warn("admin login rejected")
		response.Error(c, http.StatusUnauthorized, "INVALID_CREDENTIALS", "invalid password")
		return
	}
	token, expires, err := h.jwt.GenerateToken("admin", jwt.RoleAdmin)
	if err != nil {
		h.writeError(c, err, nil)
		return
	}
	response.Success(c, http.StatusOK, LoginResponse{Token: token, ExpiresAt: expires})
}

func (h *Handler) ClearAll(c *gin.Context) {
	if err := h.ctrl.ClearAll(c.Request.Context()); err != nil {
		h.writeError(c, err, nil)
		return
	}
	response.Success(c, http.StatusOK, h.ctrl.Status())
}

// writeError maps controller and store errors onto the response envelope.
func (h *Handler) writeError(c *gin.Context, err error, partial any) {
	_ = c.Error(err)

	var nf *NotFoundError
	var se *repository.StoreError
	switch {
	case errors.Is(err, ErrNotReady):
		response.Error(c, http.StatusServiceUnavailable, "NOT_READY", err.Error())
	case errors.As(err, &nf):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", err.Error())
	case errors.Is(err, ErrShipmentPartMismatch):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
	case errors.Is(err, ErrClientHasActiveProjects):
		response.Error(c, http.StatusConflict, "CLIENT_HAS_ACTIVE_PROJECTS", err.Error())
	case errors.Is(err, ErrPartialPurchaseOrder):
		response.ErrorWithDetails(c, http.StatusInternalServerError, "PARTIAL_WRITE", err.Error(), partial)
	case errors.Is(err, repository.ErrUnknownTable):
		response.Error(c, http.StatusNotFound, "UNKNOWN_COLLECTION", err.Error())
	case errors.As(err, &se):
		status, code := storeStatus(se.Kind)
		response.Error(c, status, code, err.Error())
	default:
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
	}
}

func storeStatus(k repository.ErrorKind) (int, string) {
	switch k {
	case repository.KindForeignKey:
		return http.StatusConflict, "REFERENCE_VIOLATION"
	case repository.KindUnique:
		return http.StatusConflict, "ALREADY_EXISTS"
	case repository.KindNotNull:
		return http.StatusBadRequest, "VALIDATION_ERROR"
	case repository.KindPermission:
		return http.StatusForbidden, "STORE_PERMISSION_DENIED"
	case repository.KindNetwork, repository.KindCanceled:
		return http.StatusServiceUnavailable, "STORE_UNAVAILABLE"
	default:
		return http.StatusInternalServerError, "STORE_ERROR"
	}
}
