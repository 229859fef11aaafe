package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/justsurfingit/applicant-tracker/internal/dtos"
	"github.com/justsurfingit/applicant-tracker/internal/forms"
	"github.com/justsurfingit/applicant-tracker/internal/services"
)

// FormHandler serves the form builder. Every mutating call answers with the
// whole updated form so the builder can redraw from it.
type FormHandler struct {
	Forms *services.FormService
}

func NewFormHandler(f *services.FormService) *FormHandler {
	return &FormHandler{Forms: f}
}

func (h *FormHandler) ListForms(c *gin.Context) {
	list, err := h.Forms.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *FormHandler) CreateForm(c *gin.Context) {
	var req dtos.CreateFormRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	form, err := h.Forms.Create(c.Request.Context(), req.Name, req.Description, req.IsDefault)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, form)
}

func (h *FormHandler) GetForm(c *gin.Context) {
	form, err := h.Forms.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, form)
}

// RenderForm is the public view of a form: widgets only.
func (h *FormHandler) RenderForm(c *gin.Context) {
	form, err := h.Forms.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"id":          form.ID,
		"name":        form.Name,
		"description": form.Description,
		"widgets":     forms.Render(form),
	})
}

func (h *FormHandler) DeleteForm(c *gin.Context) {
	if err := h.Forms.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *FormHandler) SetDefault(c *gin.Context) {
	ctx := c.Request.Context()
	if err := h.Forms.SetDefault(ctx, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	form, err := h.Forms.Get(ctx, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, form)
}

// InsertField drops a palette item onto the canvas.
func (h *FormHandler) InsertField(c *gin.Context) {
	var req dtos.InsertFieldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	form, field, err := h.Forms.InsertField(c.Request.Context(), c.Param("id"), req.FieldType, req.Target)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"form": form, "field": field})
}

func (h *FormHandler) MoveField(c *gin.Context) {
	var req dtos.MoveFieldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	form, err := h.Forms.MoveField(c.Request.Context(), c.Param("id"), c.Param("fieldId"), *req.Target)
	h.respondForm(c, form, err)
}

func (h *FormHandler) UpdateField(c *gin.Context) {
	var req dtos.UpdateFieldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	patch, err := req.Patch()
	if err != nil {
		respondError(c, err)
		return
	}
	form, err := h.Forms.UpdateField(c.Request.Context(), c.Param("id"), c.Param("fieldId"), patch)
	h.respondForm(c, form, err)
}

func (h *FormHandler) SetOptions(c *gin.Context) {
	var req dtos.SetOptionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	form, err := h.Forms.SetOptions(c.Request.Context(), c.Param("id"), c.Param("fieldId"), req.Options)
	h.respondForm(c, form, err)
}

func (h *FormHandler) RemoveField(c *gin.Context) {
	form, err := h.Forms.RemoveField(c.Request.Context(), c.Param("id"), c.Param("fieldId"))
	h.respondForm(c, form, err)
}

func (h *FormHandler) respondForm(c *gin.Context, form forms.Form, err error) {
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, form)
}
