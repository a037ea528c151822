package web

import (
	"fmt"
	"io/fs"
	"net/http"

	"github.com/digit2ai/CRM-Co-Pilot/internal/domain"
	"github.com/digit2ai/CRM-Co-Pilot/internal/planner"
	"github.com/digit2ai/CRM-Co-Pilot/internal/project"
	"github.com/digit2ai/CRM-Co-Pilot/internal/story"
	"github.com/digit2ai/CRM-Co-Pilot/internal/templates"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// topTemplates is how many popular templates the index page shows.
const topTemplates = 5

// registerRoutes sets up the HTML pages and static assets.
func registerRoutes(router *gin.Engine, db *gorm.DB, svc *planner.Service) {
	staticFS, _ := fs.Sub(assetsFS, "assets")
	router.StaticFS("/static", http.FS(staticFS))

	router.GET("/", handleIndex(db))
	router.GET("/projects", handleProjectList(db, ""))
	router.GET("/projects/active", handleProjectList(db, project.StatusActive))
	router.GET("/projects/:id", handleProjectDetail(db))
	router.GET("/projects/:id/backlog", handleBacklog(db))
	router.GET("/projects/:id/save-as-template", handleSaveTemplateForm(db))
	router.POST("/projects/:id/save-as-template", handleSaveTemplateSubmit(db, svc))
	router.GET("/sprints", handleSprintList(db))
	router.GET("/sprints/:id", handleSprintDetail(db))
	router.GET("/stories", handleStoryList(db))
	router.GET("/stories/:id", handleStoryDetail(db))
	router.GET("/stories/:id/edit-prompt", handleEditPromptForm(db))
	router.POST("/stories/:id/edit-prompt", handleEditPromptSubmit(db))
	router.GET("/create-from-prompt", handleGenerateForm())
	router.POST("/create-from-prompt", handleGenerateSubmit(svc))
	router.GET("/templates", handleTemplateList(db))
	router.GET("/templates/:id", handleTemplateDetail(db))
	router.GET("/create-from-template/:id", handleUseTemplateForm(db))
	router.POST("/create-from-template/:id", handleUseTemplateSubmit(db, svc))
}

// render executes the layout with the named page partial.
func render(c *gin.Context, status int, page string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	data["page"] = page
	c.HTML(status, "layout.html", data)
}

func renderError(c *gin.Context, err error) {
	render(c, domain.StatusCode(err), "error", gin.H{"error": err.Error()})
}

func handleIndex(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		active, err := project.List(db, project.ListFilters{Status: project.StatusActive})
		if err != nil {
			renderError(c, err)
			return
		}
		popular, err := templates.List(db, templates.ListFilters{PublicOnly: true, Limit: topTemplates})
		if err != nil {
			renderError(c, err)
			return
		}
		render(c, http.StatusOK, "dashboard", gin.H{
			"projects":  active,
			"templates": popular,
		})
	}
}

func handleProjectList(db *gorm.DB, status string) gin.HandlerFunc {
	return func(c *gin.Context) {
		projects, err := project.List(db, project.ListFilters{Status: status})
		if err != nil {
			renderError(c, err)
			return
		}
		render(c, http.StatusOK, "projects", gin.H{
			"projects":   projects,
			"activeOnly": status != "",
		})
	}
}

func handleProjectDetail(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := paramID(c)
		if err != nil {
			renderError(c, err)
			return
		}
		p, err := project.GetTree(db, id)
		if err != nil {
			renderError(c, err)
			return
		}
		stats, err := project.GetAnalytics(db, id)
		if err != nil {
			renderError(c, err)
			return
		}
		render(c, http.StatusOK, "project-detail", gin.H{
			"project":   p,
			"analytics": stats,
		})
	}
}

func handleBacklog(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := paramID(c)
		if err != nil {
			renderError(c, err)
			return
		}
		p, err := project.Get(db, id)
		if err != nil {
			renderError(c, err)
			return
		}
		stories, err := project.Backlog(db, id)
		if err != nil {
			renderError(c, err)
			return
		}
		render(c, http.StatusOK, "backlog", gin.H{
			"project": p,
			"stories": stories,
		})
	}
}

func handleSprintList(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sprints, err := project.ListSprints(db, 0)
		if err != nil {
			renderError(c, err)
			return
		}
		render(c, http.StatusOK, "sprints", gin.H{"sprints": sprints})
	}
}

func handleSprintDetail(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := paramID(c)
		if err != nil {
			renderError(c, err)
			return
		}
		s, err := project.GetSprint(db, id)
		if err != nil {
			renderError(c, err)
			return
		}
		render(c, http.StatusOK, "sprint-detail", gin.H{"sprint": s})
	}
}

func handleStoryList(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		stories, err := story.List(db, story.ListFilters{Status: c.Query("status")})
		if err != nil {
			renderError(c, err)
			return
		}
		render(c, http.StatusOK, "stories", gin.H{"stories": stories})
	}
}

func handleStoryDetail(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := paramID(c)
		if err != nil {
			renderError(c, err)
			return
		}
		s, err := story.Get(db, id)
		if err != nil {
			renderError(c, err)
			return
		}
		render(c, http.StatusOK, "story-detail", gin.H{"story": s})
	}
}

func handleEditPromptForm(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := paramID(c)
		if err != nil {
			renderError(c, err)
			return
		}
		s, err := story.Get(db, id)
		if err != nil {
			renderError(c, err)
			return
		}
		render(c, http.StatusOK, "edit-prompt", gin.H{"story": s, "prompt": s.Prompt})
	}
}

func handleEditPromptSubmit(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := paramID(c)
		if err != nil {
			renderError(c, err)
			return
		}
		prompt := c.PostForm("prompt")
		if _, err := story.UpdatePrompt(db, id, prompt); err != nil {
			s, getErr := story.Get(db, id)
			if getErr != nil {
				renderError(c, getErr)
				return
			}
			render(c, domain.StatusCode(err), "edit-prompt", gin.H{
				"story":  s,
				"prompt": prompt,
				"error":  err.Error(),
			})
			return
		}
		c.Redirect(http.StatusSeeOther, fmt.Sprintf("/stories/%d", id))
	}
}

func handleGenerateForm() gin.HandlerFunc {
	return func(c *gin.Context) {
		render(c, http.StatusOK, "create-from-prompt", nil)
	}
}

func handleGenerateSubmit(svc *planner.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		name := c.PostForm("name")
		desc := c.PostForm("description")
		res, err := svc.GenerateFromPrompt(c.Request.Context(), name, desc)
		if err != nil {
			render(c, domain.StatusCode(err), "create-from-prompt", gin.H{
				"name":        name,
				"description": desc,
				"error":       err.Error(),
			})
			return
		}
		c.Redirect(http.StatusSeeOther, fmt.Sprintf("/projects/%d", res.Project.ID))
	}
}

func handleTemplateList(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := templates.List(db, templates.ListFilters{PublicOnly: true})
		if err != nil {
			renderError(c, err)
			return
		}
		render(c, http.StatusOK, "templates", gin.H{"templates": list})
	}
}

func handleTemplateDetail(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := paramID(c)
		if err != nil {
			renderError(c, err)
			return
		}
		tpl, err := templates.Get(db, id)
		if err != nil {
			renderError(c, err)
			return
		}
		tree, err := templates.Tree(tpl)
		if err != nil {
			renderError(c, err)
			return
		}
		render(c, http.StatusOK, "template-detail", gin.H{
			"template": tpl,
			"tree":     tree,
			"counts":   tree.Counts(),
		})
	}
}

func handleSaveTemplateForm(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := paramID(c)
		if err != nil {
			renderError(c, err)
			return
		}
		p, err := project.Get(db, id)
		if err != nil {
			renderError(c, err)
			return
		}
		render(c, http.StatusOK, "save-as-template", gin.H{"project": p, "public": true})
	}
}

func handleSaveTemplateSubmit(db *gorm.DB, svc *planner.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := paramID(c)
		if err != nil {
			renderError(c, err)
			return
		}
		opts := planner.SaveOpts{
			Name:        c.PostForm("name"),
			Description: c.PostForm("description"),
			Private:     c.PostForm("is_public") == "",
			CreatedBy:   c.PostForm("created_by"),
		}
		tpl, err := svc.SaveAsTemplate(c.Request.Context(), id, opts)
		if err != nil {
			p, getErr := project.Get(db, id)
			if getErr != nil {
				renderError(c, getErr)
				return
			}
			render(c, domain.StatusCode(err), "save-as-template", gin.H{
				"project":     p,
				"name":        opts.Name,
				"description": opts.Description,
				"public":      !opts.Private,
				"error":       err.Error(),
			})
			return
		}
		c.Redirect(http.StatusSeeOther, fmt.Sprintf("/templates/%d", tpl.ID))
	}
}

func handleUseTemplateForm(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := paramID(c)
		if err != nil {
			renderError(c, err)
			return
		}
		tpl, err := templates.Get(db, id)
		if err != nil {
			renderError(c, err)
			return
		}
		render(c, http.StatusOK, "create-from-template", gin.H{"template": tpl})
	}
}

func handleUseTemplateSubmit(db *gorm.DB, svc *planner.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := paramID(c)
		if err != nil {
			renderError(c, err)
			return
		}
		name := c.PostForm("name")
		desc := c.PostForm("description")
		res, err := svc.InstantiateFromTemplate(c.Request.Context(), id, name, desc)
		if err != nil {
			tpl, getErr := templates.Get(db, id)
			if getErr != nil {
				renderError(c, getErr)
				return
			}
			render(c, domain.StatusCode(err), "create-from-template", gin.H{
				"template":    tpl,
				"name":        name,
				"description": desc,
				"error":       err.Error(),
			})
			return
		}
		c.Redirect(http.StatusSeeOther, fmt.Sprintf("/projects/%d", res.Project.ID))
	}
}
