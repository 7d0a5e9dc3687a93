package web

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Tiliavir/daily-hours/internal/calendar"
	"github.com/Tiliavir/daily-hours/internal/model"
	"github.com/Tiliavir/daily-hours/internal/tasks"
	"github.com/Tiliavir/daily-hours/internal/view"
)

// isoLayout is the date format used in URLs. Date keys contain slashes.
const isoLayout = "2006-01-02"

type rowJSON struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	Hours       string `json:"hours"`
	Placeholder bool   `json:"placeholder,omitempty"`
	CanRemove   bool   `json:"canRemove"`
}

type dayJSON struct {
	Date           string    `json:"date"`
	Key            string    `json:"key"`
	Weekday        string    `json:"weekday"`
	Weekend        bool      `json:"weekend"`
	Today          bool      `json:"today"`
	IsLeave        bool      `json:"isLeave"`
	Hours          float64   `json:"hours"`
	Rows           []rowJSON `json:"rows"`
	CanAdd         bool      `json:"canAdd"`
	CanToggleLeave bool      `json:"canToggleLeave"`
	Editable       bool      `json:"editable"`
}

type gridJSON struct {
	View  model.ViewMode `json:"view"`
	Date  string         `json:"date"`
	Title string         `json:"title"`
	Days  []dayJSON      `json:"days"`
	Total float64        `json:"total"`
	Label string         `json:"label"`
}

func toDayJSON(dv view.DayView) dayJSON {
	rows := make([]rowJSON, len(dv.Rows))
	for i, r := range dv.Rows {
		rows[i] = rowJSON{
			ID:          r.ID(),
			Description: r.Task.Description,
			Hours:       string(r.Task.Hours),
			Placeholder: r.Placeholder,
			CanRemove:   dv.Policy.CanRemove(r),
		}
	}
	return dayJSON{
		Date:           dv.Day.Date.Format(isoLayout),
		Key:            dv.Day.Key,
		Weekday:        dv.Day.Weekday,
		Weekend:        dv.Day.Weekend,
		Today:          dv.Today,
		IsLeave:        dv.Entry.IsLeave,
		Hours:          dv.Hours,
		Rows:           rows,
		CanAdd:         dv.Policy.CanAdd(),
		CanToggleLeave: dv.Policy.CanToggleLeave(),
		Editable:       dv.Policy.Editable(),
	}
}

func toGridJSON(g view.Grid) gridJSON {
	days := make([]dayJSON, len(g.Days))
	for i, dv := range g.Days {
		days[i] = toDayJSON(dv)
	}
	return gridJSON{
		View:  g.Selection.Mode,
		Date:  g.Selection.Date.Format(isoLayout),
		Title: g.Title,
		Days:  days,
		Total: g.Total,
		Label: g.Label,
	}
}

func fail(c *gin.Context, status int, err error) {
	c.JSON(status, gin.H{
		"success": false,
		"error":   err.Error(),
	})
}

// failFor maps domain errors to HTTP status codes.
func failFor(c *gin.Context, err error) {
	switch {
	case errors.Is(err, view.ErrNoSuchTask):
		fail(c, http.StatusNotFound, err)
	case errors.Is(err, view.ErrNotAllowed):
		fail(c, http.StatusConflict, err)
	case errors.Is(err, tasks.ErrBadHours), errors.Is(err, tasks.ErrUnknownField), errors.Is(err, calendar.ErrBadKey):
		fail(c, http.StatusBadRequest, err)
	default:
		fail(c, http.StatusInternalServerError, err)
	}
}

func ok(c *gin.Context, status int, data any) {
	c.JSON(status, gin.H{
		"success": true,
		"data":    data,
	})
}

// dateKey converts the :date parameter (YYYY-MM-DD) into a date key.
func dateKey(c *gin.Context) (string, bool) {
	t, err := time.ParseInLocation(isoLayout, c.Param("date"), time.Local)
	if err != nil {
		fail(c, http.StatusBadRequest, errors.New("date must be YYYY-MM-DD"))
		return "", false
	}
	return calendar.Key(t), true
}

func (s *Server) handleMe(c *gin.Context) {
	ok(c, http.StatusOK, gin.H{"userId": sessionOf(c).UserID()})
}

// handleGrid serves the grid for ?view=day|week|month&date=YYYY-MM-DD.
// Missing parameters keep the session's current selection.
func (s *Server) handleGrid(c *gin.Context) {
	sess := sessionOf(c)
	sel := sess.Selection()

	if v := c.Query("view"); v != "" {
		mode, err := model.ParseViewMode(v)
		if err != nil {
			fail(c, http.StatusBadRequest, err)
			return
		}
		sel.Mode = mode
	}
	if d := c.Query("date"); d != "" {
		t, err := time.ParseInLocation(isoLayout, d, time.Local)
		if err != nil {
			fail(c, http.StatusBadRequest, errors.New("date must be YYYY-MM-DD"))
			return
		}
		sel.Date = t
	}

	ok(c, http.StatusOK, toGridJSON(sess.ShowSnapshot(sel)))
}

func (s *Server) handleDay(c *gin.Context) {
	key, valid := dateKey(c)
	if !valid {
		return
	}
	s.respondDay(c, http.StatusOK, key)
}

func (s *Server) respondDay(c *gin.Context, status int, key string) {
	dv, err := sessionOf(c).DayView(key)
	if err != nil {
		failFor(c, err)
		return
	}
	ok(c, status, toDayJSON(dv))
}

func (s *Server) handleAddTask(c *gin.Context) {
	key, valid := dateKey(c)
	if !valid {
		return
	}
	if _, err := sessionOf(c).AddTask(key); err != nil {
		failFor(c, err)
		return
	}
	s.respondDay(c, http.StatusCreated, key)
}

type editRequest struct {
	Field string `json:"field" binding:"required"`
	Value string `json:"value"`
}

// handleEditTask edits one field of a row. The id "empty" addresses the
// placeholder row of a day without tasks.
func (s *Server) handleEditTask(c *gin.Context) {
	key, valid := dateKey(c)
	if !valid {
		return
	}
	var req editRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err)
		return
	}
	field, err := tasks.ParseField(req.Field)
	if err != nil {
		failFor(c, err)
		return
	}

	sess := sessionOf(c)
	row, err := sess.Row(key, c.Param("id"))
	if err != nil {
		failFor(c, err)
		return
	}
	if field == tasks.FieldHours {
		err = sess.EditHours(key, row, req.Value)
	} else {
		err = sess.EditDescription(key, row, req.Value)
	}
	if err != nil {
		failFor(c, err)
		return
	}
	s.respondDay(c, http.StatusOK, key)
}

func (s *Server) handleRemoveTask(c *gin.Context) {
	key, valid := dateKey(c)
	if !valid {
		return
	}
	if err := sessionOf(c).RemoveTask(key, c.Param("id")); err != nil {
		failFor(c, err)
		return
	}
	s.respondDay(c, http.StatusOK, key)
}

func (s *Server) handleToggleLeave(c *gin.Context) {
	key, valid := dateKey(c)
	if !valid {
		return
	}
	if err := sessionOf(c).ToggleLeave(key); err != nil {
		failFor(c, err)
		return
	}
	s.respondDay(c, http.StatusOK, key)
}
