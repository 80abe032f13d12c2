package api

import (
	"net/http"

	"github.com/xraph/forge"

	"github.com/xraph/steward/role"
)

func (a *API) registerRoleRoutes(router forge.Router) error {
	g := router.Group("", forge.WithGroupTags("roles"))

	if err := g.POST("/roles", a.createRole,
		forge.WithSummary("Create role"),
		forge.WithDescription("Creates a role granting the named permissions. All permissions must already exist."),
		forge.WithOperationID("createRole"),
		forge.WithRequestSchema(CreateRoleRequest{}),
		forge.WithCreatedResponse(&role.Role{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.GET("/roles", a.listRoles,
		forge.WithSummary("List roles"),
		forge.WithDescription("Lists roles with their permissions resolved, optionally filtered by name fragment."),
		forge.WithOperationID("listRoles"),
		forge.WithRequestSchema(ListRolesRequest{}),
		forge.WithResponseSchema(http.StatusOK, "Role list", []*role.Role{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.PUT("/roles/:name", a.updateRole,
		forge.WithSummary("Update role"),
		forge.WithDescription("Replaces a role's name and permission list."),
		forge.WithOperationID("updateRole"),
		forge.WithRequestSchema(UpdateRoleRequest{}),
		forge.WithResponseSchema(http.StatusOK, "Updated role", &role.Role{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.PATCH("/roles/addPermission/:name", a.addPermission,
		forge.WithSummary("Add permission to role"),
		forge.WithOperationID("addPermissionToRole"),
		forge.WithRequestSchema(RolePermissionRequest{}),
		forge.WithResponseSchema(http.StatusOK, "Updated role", &role.Role{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.PATCH("/roles/removePermission/:name", a.removePermission,
		forge.WithSummary("Remove permission from role"),
		forge.WithOperationID("removePermissionFromRole"),
		forge.WithRequestSchema(RolePermissionRequest{}),
		forge.WithResponseSchema(http.StatusOK, "Updated role", &role.Role{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	return g.DELETE("/roles/:name", a.deleteRole,
		forge.WithSummary("Delete role"),
		forge.WithDescription("Deletes a role. Users referencing it keep the dangling reference."),
		forge.WithOperationID("deleteRole"),
		forge.WithResponseSchema(http.StatusOK, "Deletion acknowledged", &StatusResponse{}),
		forge.WithErrorResponses(),
	)
}

func (a *API) createRole(ctx forge.Context, req *CreateRoleRequest) (*role.Role, error) {
	if err := req.Validate(); err != nil {
		return nil, forge.BadRequest(err.Error())
	}
	r, err := a.eng.CreateRole(ctx.Context(), req.Name, permissionNames(req.Permissions))
	if err != nil {
		return nil, mapError(err)
	}
	return r, ctx.JSON(http.StatusCreated, r)
}

func (a *API) listRoles(ctx forge.Context, req *ListRolesRequest) ([]*role.Role, error) {
	roles, err := a.eng.ListRoles(ctx.Context(), req.Name)
	if err != nil {
		return nil, mapError(err)
	}
	return roles, ctx.JSON(http.StatusOK, roles)
}

func (a *API) updateRole(ctx forge.Context, req *UpdateRoleRequest) (*role.Role, error) {
	if err := req.Validate(); err != nil {
		return nil, forge.BadRequest(err.Error())
	}
	r, err := a.eng.UpdateRole(ctx.Context(), ctx.Param("name"), req.Name, permissionNames(req.Permissions))
	if err != nil {
		return nil, mapError(err)
	}
	return r, ctx.JSON(http.StatusOK, r)
}

func (a *API) addPermission(ctx forge.Context, req *RolePermissionRequest) (*role.Role, error) {
	if err := req.Validate(); err != nil {
		return nil, forge.BadRequest(err.Error())
	}
	r, err := a.eng.AddPermissionToRole(ctx.Context(), ctx.Param("name"), req.Name)
	if err != nil {
		return nil, mapError(err)
	}
	return r, ctx.JSON(http.StatusOK, r)
}

func (a *API) removePermission(ctx forge.Context, req *RolePermissionRequest) (*role.Role, error) {
	if err := req.Validate(); err != nil {
		return nil, forge.BadRequest(err.Error())
	}
	r, err := a.eng.RemovePermissionFromRole(ctx.Context(), ctx.Param("name"), req.Name)
	if err != nil {
		return nil, mapError(err)
	}
	return r, ctx.JSON(http.StatusOK, r)
}

func (a *API) deleteRole(ctx forge.Context, _ *RoleNameRequest) (*StatusResponse, error) {
	if err := a.eng.DeleteRole(ctx.Context(), ctx.Param("name")); err != nil {
		return nil, mapError(err)
	}
	resp := &StatusResponse{Status: "deleted"}
	return resp, ctx.JSON(http.StatusOK, resp)
}

func permissionNames(refs []PermissionRef) []string {
	names := make([]string, len(refs))
	for i, ref := range refs {
		names[i] = ref.Name
	}
	return names
}
