package web

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Skufu/healthassistant/internal/diagnosis"
	"github.com/Skufu/healthassistant/internal/outcome"
)

type Diagnoser interface {
	Diagnose(ctx context.Context, d diagnosis.Disease, values map[string]string) (diagnosis.Result, error)
}

type Asker interface {
	Ask(ctx context.Context, question string) string
}

type OutcomeCounter interface {
	Counts(ctx context.Context) ([]outcome.Count, error)
}

// Handler serves the pages and the JSON API.
type Handler struct {
	diagnoser Diagnoser
	asker     Asker
	counter   OutcomeCounter
	logger    *zap.Logger
}

// NewHandler wires the page handlers. counter may be nil when the outcome log is disabled.
func NewHandler(diagnoser Diagnoser, asker Asker, counter OutcomeCounter, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{diagnoser: diagnoser, asker: asker, counter: counter, logger: logger}
}

type pageView struct {
	MenuTitle string
	MenuIcon  string
	Nav       []navItem
	Form      *formView
	Chat      *chatView
}

type formView struct {
	Schema    diagnosis.Schema
	Values    map[string]string
	Errors    map[string]string
	Diagnosis string
	Failure   string
}

type chatView struct {
	Question string
	Answer   string
}

func newPageView(active string) pageView {
	return pageView{MenuTitle: menuTitle, MenuIcon: menuIcon, Nav: navFor(active)}
}

func (h *Handler) index(c *gin.Context) {
	h.renderPage(c, http.StatusOK, DefaultPage(), nil, nil)
}

func (h *Handler) showPage(c *gin.Context) {
	page, ok := Resolve(c.Param("page"))
	if !ok {
		c.HTML(http.StatusNotFound, "page.tmpl", newPageView(""))
		return
	}
	h.renderPage(c, http.StatusOK, page, nil, nil)
}

func (h *Handler) submitPage(c *gin.Context) {
	page, ok := Resolve(c.Param("page"))
	if !ok {
		c.HTML(http.StatusNotFound, "page.tmpl", newPageView(""))
		return
	}

	if page.IsChat() {
		question := c.PostForm("question")
		answer := h.asker.Ask(c.Request.Context(), question)
		h.renderPage(c, http.StatusOK, page, nil, &chatView{Question: question, Answer: answer})
		return
	}

	schema, err := diagnosis.Lookup(page.Disease)
	if err != nil {
		c.HTML(http.StatusNotFound, "page.tmpl", newPageView(""))
		return
	}

	values := make(map[string]string, schema.Width())
	for _, f := range schema.Fields {
		values[f.Key] = c.PostForm(f.Key)
	}
	form := &formView{Schema: schema, Values: values}

	res, err := h.diagnoser.Diagnose(c.Request.Context(), page.Disease, values)
	var inputErr *diagnosis.InputError
	switch {
	case errors.As(err, &inputErr):
		form.Errors = inputErr.ByField()
		h.renderPage(c, http.StatusUnprocessableEntity, page, form, nil)
	case err != nil:
		_ = c.Error(err)
		h.logger.Error("prediction failed", zap.String("disease", string(page.Disease)), zap.Error(err))
		form.Failure = "The prediction could not be computed. Please try again."
		h.renderPage(c, http.StatusInternalServerError, page, form, nil)
	default:
		form.Diagnosis = res.Diagnosis
		h.renderPage(c, http.StatusOK, page, form, nil)
	}
}

// renderPage draws the navigation and exactly one panel for page.
func (h *Handler) renderPage(c *gin.Context, status int, page Page, form *formView, chat *chatView) {
	view := newPageView(page.ID)
	if page.IsChat() {
		if chat == nil {
			chat = &chatView{}
		}
		view.Chat = chat
	} else {
		if form == nil {
			schema, err := diagnosis.Lookup(page.Disease)
			if err != nil {
				c.HTML(http.StatusNotFound, "page.tmpl", newPageView(""))
				return
			}
			form = &formView{Schema: schema}
		}
		view.Form = form
	}
	c.HTML(status, "page.tmpl", view)
}

type PredictRequest struct {
	Features map[string]any `json:"features" binding:"required"`
}

func (h *Handler) predictAPI(c *gin.Context) {
	d := diagnosis.Disease(c.Param("disease"))
	if _, err := diagnosis.Lookup(d); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown disease"})
		return
	}

	var req PredictRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload", "details": err.Error()})
		return
	}

	res, err := h.diagnoser.Diagnose(c.Request.Context(), d, stringify(req.Features))
	var inputErr *diagnosis.InputError
	switch {
	case errors.As(err, &inputErr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "invalid_input", "fields": inputErr.Fields})
	case err != nil:
		_ = c.Error(err)
		h.logger.Error("prediction failed", zap.String("disease", string(d)), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "prediction failed"})
	default:
		c.JSON(http.StatusOK, res)
	}
}

// stringify lets JSON numbers and strings go through the same parser as form fields.
// Anything else becomes a value the parser rejects.
func stringify(features map[string]any) map[string]string {
	out := make(map[string]string, len(features))
	for k, v := range features {
		switch t := v.(type) {
		case string:
			out[k] = t
		case float64:
			out[k] = strconv.FormatFloat(t, 'g', -1, 64)
		case nil:
			out[k] = ""
		default:
			out[k] = "?"
		}
	}
	return out
}

type ChatRequest struct {
	Question string `json:"question"`
}

func (h *Handler) chatAPI(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	if strings.TrimSpace(req.Question) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "question is required"})
		return
	}

	answer := h.asker.Ask(c.Request.Context(), req.Question)
	c.JSON(http.StatusOK, gin.H{"answer": answer})
}

func (h *Handler) schemasAPI(c *gin.Context) {
	c.JSON(http.StatusOK, diagnosis.Schemas())
}

func (h *Handler) outcomesAPI(c *gin.Context) {
	if h.counter == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "outcome log disabled"})
		return
	}

	counts, err := h.counter.Counts(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load outcomes"})
		return
	}
	if counts == nil {
		counts = []outcome.Count{}
	}
	c.JSON(http.StatusOK, gin.H{"outcomes": counts})
}
