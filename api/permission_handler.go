package api

import (
	"net/http"

	"github.com/xraph/forge"

	"github.com/xraph/steward/permission"
)

func (a *API) registerPermissionRoutes(router forge.Router) error {
	g := router.Group("", forge.WithGroupTags("permissions"))

	if err := g.POST("/permissions", a.createPermission,
		forge.WithSummary("Create permission"),
		forge.WithDescription("Creates a new permission with a unique name."),
		forge.WithOperationID("createPermission"),
		forge.WithRequestSchema(CreatePermissionRequest{}),
		forge.WithCreatedResponse(&permission.Permission{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.GET("/permissions", a.listPermissions,
		forge.WithSummary("List permissions"),
		forge.WithDescription("Lists permissions, optionally filtered by a case-insensitive name fragment."),
		forge.WithOperationID("listPermissions"),
		forge.WithRequestSchema(ListPermissionsRequest{}),
		forge.WithResponseSchema(http.StatusOK, "Permission list", []*permission.Permission{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.PUT("/permissions", a.renamePermission,
		forge.WithSummary("Rename permission"),
		forge.WithDescription("Renames a permission. Roles referencing it by ID are unaffected."),
		forge.WithOperationID("renamePermission"),
		forge.WithRequestSchema(RenamePermissionRequest{}),
		forge.WithResponseSchema(http.StatusOK, "Renamed permission", &permission.Permission{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	return g.DELETE("/permissions/:name", a.deletePermission,
		forge.WithSummary("Delete permission"),
		forge.WithDescription("Deletes a permission. Roles referencing it keep the dangling reference."),
		forge.WithOperationID("deletePermission"),
		forge.WithResponseSchema(http.StatusOK, "Deletion acknowledged", &StatusResponse{}),
		forge.WithErrorResponses(),
	)
}

func (a *API) createPermission(ctx forge.Context, req *CreatePermissionRequest) (*permission.Permission, error) {
	if err := req.Validate(); err != nil {
		return nil, forge.BadRequest(err.Error())
	}
	p, err := a.eng.CreatePermission(ctx.Context(), req.Name)
	if err != nil {
		return nil, mapError(err)
	}
	return p, ctx.JSON(http.StatusCreated, p)
}

func (a *API) listPermissions(ctx forge.Context, req *ListPermissionsRequest) ([]*permission.Permission, error) {
	perms, err := a.eng.ListPermissions(ctx.Context(), req.Name)
	if err != nil {
		return nil, mapError(err)
	}
	return perms, ctx.JSON(http.StatusOK, perms)
}

func (a *API) renamePermission(ctx forge.Context, req *RenamePermissionRequest) (*permission.Permission, error) {
	if err := req.Validate(); err != nil {
		return nil, forge.BadRequest(err.Error())
	}
	p, err := a.eng.RenamePermission(ctx.Context(), req.OriginalName, req.NewName)
	if err != nil {
		return nil, mapError(err)
	}
	return p, ctx.JSON(http.StatusOK, p)
}

func (a *API) deletePermission(ctx forge.Context, _ *PermissionNameRequest) (*StatusResponse, error) {
	if err := a.eng.DeletePermission(ctx.Context(), ctx.Param("name")); err != nil {
		return nil, mapError(err)
	}
	resp := &StatusResponse{Status: "deleted"}
	return resp, ctx.JSON(http.StatusOK, resp)
}
