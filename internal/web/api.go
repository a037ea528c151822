package web

import (
	"io"
	"net/http"
	"strconv"

	"github.com/digit2ai/CRM-Co-Pilot/internal/blueprint"
	"github.com/digit2ai/CRM-Co-Pilot/internal/classify"
	"github.com/digit2ai/CRM-Co-Pilot/internal/domain"
	"github.com/digit2ai/CRM-Co-Pilot/internal/importer"
	"github.com/digit2ai/CRM-Co-Pilot/internal/models"
	"github.com/digit2ai/CRM-Co-Pilot/internal/planner"
	"github.com/digit2ai/CRM-Co-Pilot/internal/project"
	"github.com/digit2ai/CRM-Co-Pilot/internal/risk"
	"github.com/digit2ai/CRM-Co-Pilot/internal/story"
	"github.com/digit2ai/CRM-Co-Pilot/internal/templates"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// maxImportSize bounds an uploaded CSV file.
const maxImportSize = 10 << 20

// registerAPI sets up the JSON API.
func registerAPI(router *gin.Engine, db *gorm.DB, svc *planner.Service) {
	router.GET("/health", handleHealth())

	api := router.Group("/api")
	api.POST("/classify", handleClassify())

	api.GET("/projects", handleAPIProjectList(db))
	api.POST("/projects", handleAPIProjectCreate(db))
	api.POST("/projects/generate", handleAPIGenerate(svc))
	api.GET("/projects/:id", handleAPIProjectGet(db))
	api.PUT("/projects/:id", handleAPIProjectUpdate(db))
	api.DELETE("/projects/:id", handleAPIProjectDelete(db))
	api.GET("/projects/:id/tree", handleAPIProjectTree(svc))
	api.POST("/projects/:id/instantiate", handleAPIInstantiate(svc))
	api.GET("/projects/:id/analytics", handleAPIAnalytics(db))
	api.POST("/projects/:id/templates", handleAPISaveTemplate(svc))
	api.GET("/projects/:id/risks", handleAPIRiskList(db))
	api.POST("/projects/:id/risks", handleAPIRiskCreate(db))

	api.PUT("/risks/:id", handleAPIRiskUpdate(db))
	api.DELETE("/risks/:id", handleAPIRiskDelete(db))

	api.POST("/sprints/:id/recalculate", handleAPIRecalculate(svc))

	api.POST("/epics/:id/stories", handleAPIStoryCreate(db))
	api.GET("/stories/:id", handleAPIStoryGet(db))
	api.PUT("/stories/:id", handleAPIStoryUpdate(db))
	api.DELETE("/stories/:id", handleAPIStoryDelete(db))
	api.PUT("/stories/:id/prompt", handleAPIStoryPrompt(db))

	api.GET("/templates", handleAPITemplateList(db))
	api.GET("/templates/:id", handleAPITemplateGet(db))
	api.DELETE("/templates/:id", handleAPITemplateDelete(db))
	api.POST("/templates/:id/instantiate", handleAPITemplateInstantiate(svc))

	api.POST("/import", handleAPIImport(db))
}

// paramID parses the :id path parameter.
func paramID(c *gin.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, domain.Validation("invalid id %q", c.Param("id"))
	}
	return uint(id), nil
}

func bindJSON(c *gin.Context, dst any) error {
	if err := c.ShouldBindJSON(dst); err != nil {
		return domain.Validation("invalid request body: %v", err)
	}
	return nil
}

func handleHealth() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}

type classifyRequest struct {
	Description string `json:"description"`
}

func handleClassify() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req classifyRequest
		if err := bindJSON(c, &req); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"project_type": classify.Classify(req.Description)})
	}
}

// Projects.

type projectRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	ProjectType *string `json:"project_type"`
	Status      *string `json:"status"`
}

func handleAPIProjectList(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		projects, err := project.List(db, project.ListFilters{
			Status:      c.Query("status"),
			ProjectType: c.Query("type"),
		})
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, projects)
	}
}

func handleAPIProjectCreate(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req projectRequest
		if err := bindJSON(c, &req); err != nil {
			respondError(c, err)
			return
		}
		p, err := project.Create(db, project.CreateOpts{
			Name:        deref(req.Name),
			Description: deref(req.Description),
			ProjectType: deref(req.ProjectType),
			Status:      deref(req.Status),
		})
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, p)
	}
}

type generateRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func handleAPIGenerate(svc *planner.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req generateRequest
		if err := bindJSON(c, &req); err != nil {
			respondError(c, err)
			return
		}
		res, err := svc.GenerateFromPrompt(c.Request.Context(), req.Name, req.Description)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, res)
	}
}

func handleAPIProjectGet(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := paramID(c)
		if err != nil {
			respondError(c, err)
			return
		}
		p, err := project.GetTree(db, id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, p)
	}
}

func handleAPIProjectUpdate(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := paramID(c)
		if err != nil {
			respondError(c, err)
			return
		}
		var req projectRequest
		if err := bindJSON(c, &req); err != nil {
			respondError(c, err)
			return
		}
		p, err := project.Update(db, id, project.UpdateOpts{
			Name:        req.Name,
			Description: req.Description,
			Status:      req.Status,
			ProjectType: req.ProjectType,
		})
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, p)
	}
}

func handleAPIProjectDelete(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := paramID(c)
		if err != nil {
			respondError(c, err)
			return
		}
		if err := project.Delete(db, id); err != nil {
			respondError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

func handleAPIProjectTree(svc *planner.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := paramID(c)
		if err != nil {
			respondError(c, err)
			return
		}
		tree, err := svc.SerializeProject(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, tree)
	}
}

// handleAPIInstantiate decodes the body strictly: a tree missing a field is
// rejected as malformed rather than defaulted.
func handleAPIInstantiate(svc *planner.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := paramID(c)
		if err != nil {
			respondError(c, err)
			return
		}
		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			respondError(c, domain.Validation("read body: %v", err))
			return
		}
		tree, err := blueprint.Decode(body)
		if err != nil {
			respondError(c, err)
			return
		}
		sum, err := svc.InstantiateInto(c.Request.Context(), id, tree)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, sum)
	}
}

func handleAPIAnalytics(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := paramID(c)
		if err != nil {
			respondError(c, err)
			return
		}
		a, err := project.GetAnalytics(db, id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, a)
	}
}

type saveTemplateRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	IsPublic    *bool  `json:"is_public"`
	CreatedBy   string `json:"created_by"`
}

func handleAPISaveTemplate(svc *planner.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := paramID(c)
		if err != nil {
			respondError(c, err)
			return
		}
		var req saveTemplateRequest
		if err := bindJSON(c, &req); err != nil {
			respondError(c, err)
			return
		}
		tpl, err := svc.SaveAsTemplate(c.Request.Context(), id, planner.SaveOpts{
			Name:        req.Name,
			Description: req.Description,
			Private:     req.IsPublic != nil && !*req.IsPublic,
			CreatedBy:   req.CreatedBy,
		})
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, tpl)
	}
}

// Risks.

type riskRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Severity    *string `json:"severity"`
	Mitigation  *string `json:"mitigation"`
	Status      *string `json:"status"`
}

func handleAPIRiskList(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := paramID(c)
		if err != nil {
			respondError(c, err)
			return
		}
		risks, err := risk.List(db, id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, risks)
	}
}

func handleAPIRiskCreate(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := paramID(c)
		if err != nil {
			respondError(c, err)
			return
		}
		var req riskRequest
		if err := bindJSON(c, &req); err != nil {
			respondError(c, err)
			return
		}
		r, err := risk.Create(db, risk.CreateOpts{
			ProjectID:   id,
			Title:       deref(req.Title),
			Description: deref(req.Description),
			Severity:    deref(req.Severity),
			Mitigation:  deref(req.Mitigation),
			Status:      deref(req.Status),
		})
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, r)
	}
}

func handleAPIRiskUpdate(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := paramID(c)
		if err != nil {
			respondError(c, err)
			return
		}
		var req riskRequest
		if err := bindJSON(c, &req); err != nil {
			respondError(c, err)
			return
		}
		r, err := risk.Update(db, id, risk.UpdateOpts{
			Title:       req.Title,
			Description: req.Description,
			Severity:    req.Severity,
			Mitigation:  req.Mitigation,
			Status:      req.Status,
		})
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, r)
	}
}

func handleAPIRiskDelete(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := paramID(c)
		if err != nil {
			respondError(c, err)
			return
		}
		if err := risk.Delete(db, id); err != nil {
			respondError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

// Sprints and stories.

func handleAPIRecalculate(svc *planner.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := paramID(c)
		if err != nil {
			respondError(c, err)
			return
		}
		points, err := svc.RecalculateSprintPoints(c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"sprint_id": id, "story_points": points})
	}
}

type storyRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Prompt      *string `json:"prompt"`
	Points      *int    `json:"story_points"`
	Status      *string `json:"status"`
	Assignee    *string `json:"assignee"`
	Priority    *string `json:"priority"`
}

func handleAPIStoryCreate(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		epicID, err := paramID(c)
		if err != nil {
			respondError(c, err)
			return
		}
		var req storyRequest
		if err := bindJSON(c, &req); err != nil {
			respondError(c, err)
			return
		}
		s, err := story.Create(db, story.CreateOpts{
			EpicID:      epicID,
			Title:       deref(req.Title),
			Description: deref(req.Description),
			Prompt:      deref(req.Prompt),
			Points:      req.Points,
			Status:      deref(req.Status),
			Assignee:    deref(req.Assignee),
			Priority:    deref(req.Priority),
		})
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, s)
	}
}

func handleAPIStoryGet(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := paramID(c)
		if err != nil {
			respondError(c, err)
			return
		}
		s, err := story.Get(db, id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, s)
	}
}

func handleAPIStoryUpdate(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := paramID(c)
		if err != nil {
			respondError(c, err)
			return
		}
		var req storyRequest
		if err := bindJSON(c, &req); err != nil {
			respondError(c, err)
			return
		}
		s, err := story.Update(db, id, story.UpdateOpts{
			Title:       req.Title,
			Description: req.Description,
			Prompt:      req.Prompt,
			Points:      req.Points,
			Status:      req.Status,
			Assignee:    req.Assignee,
			Priority:    req.Priority,
		})
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, s)
	}
}

func handleAPIStoryDelete(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := paramID(c)
		if err != nil {
			respondError(c, err)
			return
		}
		if err := story.Delete(db, id); err != nil {
			respondError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

type promptRequest struct {
	Prompt string `json:"prompt"`
}

func handleAPIStoryPrompt(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := paramID(c)
		if err != nil {
			respondError(c, err)
			return
		}
		var req promptRequest
		if err := bindJSON(c, &req); err != nil {
			respondError(c, err)
			return
		}
		s, err := story.UpdatePrompt(db, id, req.Prompt)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, s)
	}
}

// Templates.

// templateDetail is a stored template together with its decoded tree.
type templateDetail struct {
	*models.Template
	Tree blueprint.Tree `json:"template_data"`
}

func handleAPITemplateList(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := templates.List(db, templates.ListFilters{
			PublicOnly:  true,
			ProjectType: c.Query("type"),
		})
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, list)
	}
}

func handleAPITemplateGet(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := paramID(c)
		if err != nil {
			respondError(c, err)
			return
		}
		tpl, err := templates.Get(db, id)
		if err != nil {
			respondError(c, err)
			return
		}
		tree, err := templates.Tree(tpl)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, templateDetail{Template: tpl, Tree: tree})
	}
}

func handleAPITemplateDelete(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := paramID(c)
		if err != nil {
			respondError(c, err)
			return
		}
		if err := templates.Delete(db, id); err != nil {
			respondError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

func handleAPITemplateInstantiate(svc *planner.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := paramID(c)
		if err != nil {
			respondError(c, err)
			return
		}
		var req generateRequest
		if err := bindJSON(c, &req); err != nil {
			respondError(c, err)
			return
		}
		res, err := svc.InstantiateFromTemplate(c.Request.Context(), id, req.Name, req.Description)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, res)
	}
}

// Import.

func handleAPIImport(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxImportSize)
		projectID, err := strconv.ParseUint(c.PostForm("project_id"), 10, 64)
		if err != nil || projectID == 0 {
			respondError(c, domain.Validation("project_id is required"))
			return
		}
		fh, err := c.FormFile("file")
		if err != nil {
			respondError(c, domain.Validation("file is required"))
			return
		}
		f, err := fh.Open()
		if err != nil {
			respondError(c, err)
			return
		}
		defer f.Close()

		rows, err := importer.Parse(f)
		if err != nil {
			respondError(c, err)
			return
		}
		res, err := importer.Import(db, uint(projectID), rows)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, res)
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
