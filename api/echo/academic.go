package echoapi

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/nmutua/gradepoint/core/academic"
	"github.com/nmutua/gradepoint/core/user"
)

const contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type academicApi struct {
	svc    academic.Service
	usrSvc user.Service
}

func registerAcademicAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc academic.Service, usrSvc user.Service) {
	api := academicApi{svc: svc, usrSvc: usrSvc}

	ag := g.Group("/academics", jwt)

	ag.GET("/semesters", api.querySemesters)
	ag.POST("/semesters", api.createSemester)
	ag.PUT("/semesters", api.renameSemester)
	ag.DELETE("/semesters", api.destroySemester)

	ag.POST("/courses", api.createCourse)
	ag.PUT("/courses", api.updateCourse)
	ag.DELETE("/courses", api.destroyCourse)

	ag.GET("/summary", api.summary)
	ag.GET("/grades", api.queryGrades)
	ag.GET("/transcript", api.transcript)
}

// Handlers

func (api *academicApi) querySemesters(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	if id := ctx.QueryParam("semesterId"); id != "" {
		sem, err := api.svc.GetSemester(usr, id)
		if err != nil {
			return err
		}
		return ctx.JSON(http.StatusOK, sem)
	}
	return ctx.JSON(http.StatusOK, usr.Semesters)
}

func (api *academicApi) createSemester(ctx echo.Context) error {
	var data academic.NewSemester
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewSemester")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	usr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	sem, err := api.svc.AddSemester(ctx.Request().Context(), usr, data)
	if err != nil {
		return errors.Wrap(err, "adding semester")
	}
	return ctx.JSON(http.StatusCreated, sem)
}

func (api *academicApi) renameSemester(ctx echo.Context) error {
	var data academic.RenameSemester
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to RenameSemester")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	usr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	sem, err := api.svc.RenameSemester(ctx.Request().Context(), usr, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, sem)
}

func (api *academicApi) destroySemester(ctx echo.Context) error {
	var data academic.DeleteSemester
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to DeleteSemester")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	usr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	if err := api.svc.DeleteSemester(ctx.Request().Context(), usr, data); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *academicApi) createCourse(ctx echo.Context) error {
	var data academic.NewCourse
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewCourse")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	usr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	crs, err := api.svc.AddCourse(ctx.Request().Context(), usr, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, crs)
}

func (api *academicApi) updateCourse(ctx echo.Context) error {
	var data academic.UpdateCourse
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateCourse")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	usr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	crs, err := api.svc.UpdateCourse(ctx.Request().Context(), usr, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, crs)
}

func (api *academicApi) destroyCourse(ctx echo.Context) error {
	var data academic.DeleteCourse
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to DeleteCourse")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	usr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	if err := api.svc.DeleteCourse(ctx.Request().Context(), usr, data); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *academicApi) summary(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	return ctx.JSON(http.StatusOK, api.svc.Summary(usr))
}

// queryGrades returns the grade table ordered by descending points,
// ready for the course form's grade select.
func (api *academicApi) queryGrades(ctx echo.Context) error {
	table := api.svc.GradeTable()
	opts := make([]GradeOption, 0, len(table))
	for _, label := range table.Labels() {
		opts = append(opts, GradeOption{Grade: label, Points: table.PointsOf(label)})
	}
	return ctx.JSON(http.StatusOK, opts)
}

func (api *academicApi) transcript(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	buf, filename, err := academic.Transcript(api.svc.GradeTable(), usr)
	if err != nil {
		return errors.Wrap(err, "rendering transcript")
	}

	ctx.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return ctx.Blob(http.StatusOK, contentTypeXLSX, buf.Bytes())
}

type GradeOption struct {
	Grade  string  `json:"grade"`
	Points float64 `json:"points"`
}
