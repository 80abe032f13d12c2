package api

import (
	"net/http"

	"github.com/xraph/forge"

	"github.com/xraph/steward/user"
)

func (a *API) registerUserRoutes(router forge.Router) error {
	g := router.Group("", forge.WithGroupTags("users"))

	if err := g.POST("/users", a.createUser,
		forge.WithSummary("Create user"),
		forge.WithDescription("Creates a user with a unique email and an auto-assigned user code."),
		forge.WithOperationID("createUser"),
		forge.WithRequestSchema(UserRequest{}),
		forge.WithCreatedResponse(&user.User{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.GET("/users", a.listUsers,
		forge.WithSummary("List users"),
		forge.WithDescription("Returns one page of users. Responds 204 when the page is empty."),
		forge.WithOperationID("listUsers"),
		forge.WithRequestSchema(ListUsersRequest{}),
		forge.WithResponseSchema(http.StatusOK, "User page", &user.Page{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.PUT("/users/:usercode", a.updateUser,
		forge.WithSummary("Update user"),
		forge.WithDescription("Replaces a user's mutable fields. An absent role clears the role reference."),
		forge.WithOperationID("updateUser"),
		forge.WithRequestSchema(UpdateUserRequest{}),
		forge.WithResponseSchema(http.StatusOK, "Updated user", &user.User{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.PATCH("/users/add-role/:usercode", a.addRole,
		forge.WithSummary("Add role to user"),
		forge.WithOperationID("addRoleToUser"),
		forge.WithRequestSchema(UserRoleRequest{}),
		forge.WithResponseSchema(http.StatusOK, "Updated user", &user.User{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.PATCH("/users/remove-role/:usercode", a.removeRole,
		forge.WithSummary("Remove role from user"),
		forge.WithOperationID("removeRoleFromUser"),
		forge.WithRequestSchema(UserRoleRequest{}),
		forge.WithResponseSchema(http.StatusOK, "Updated user", &user.User{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.DELETE("/users/:usercode", a.deleteUser,
		forge.WithSummary("Soft-delete user"),
		forge.WithDescription("Marks a user deleted. The record and its user code are retained."),
		forge.WithOperationID("deleteUser"),
		forge.WithResponseSchema(http.StatusOK, "Deleted user", &user.User{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	if err := g.PATCH("/users/restore/:usercode", a.restoreUser,
		forge.WithSummary("Restore user"),
		forge.WithDescription("Clears a user's deleted flag."),
		forge.WithOperationID("restoreUser"),
		forge.WithResponseSchema(http.StatusOK, "Restored user", &user.User{}),
		forge.WithErrorResponses(),
	); err != nil {
		return err
	}

	return g.GET("/users/count-by-role/:rolename", a.countByRole,
		forge.WithSummary("Count users by role"),
		forge.WithDescription("Counts users holding the named role. An unknown role counts zero."),
		forge.WithOperationID("countUsersByRole"),
		forge.WithResponseSchema(http.StatusOK, "User count", &CountResponse{}),
		forge.WithErrorResponses(),
	)
}

func (a *API) createUser(ctx forge.Context, req *UserRequest) (*user.User, error) {
	if err := req.Validate(); err != nil {
		return nil, forge.BadRequest(err.Error())
	}
	u, err := a.eng.CreateUser(ctx.Context(), req.Input())
	if err != nil {
		return nil, mapError(err)
	}
	return u, ctx.JSON(http.StatusCreated, u)
}

func (a *API) listUsers(ctx forge.Context, req *ListUsersRequest) (*user.Page, error) {
	if err := req.Validate(); err != nil {
		return nil, forge.BadRequest(err.Error())
	}
	page, err := a.eng.ListUsers(ctx.Context(), req.Query())
	if err != nil {
		return nil, mapError(err)
	}
	if len(page.Data) == 0 {
		return nil, ctx.NoContent(http.StatusNoContent)
	}
	return page, ctx.JSON(http.StatusOK, page)
}

func (a *API) updateUser(ctx forge.Context, req *UpdateUserRequest) (*user.User, error) {
	if err := req.Validate(); err != nil {
		return nil, forge.BadRequest(err.Error())
	}
	code, err := parseUserCode(ctx.Param("usercode"))
	if err != nil {
		return nil, forge.BadRequest(err.Error())
	}
	u, err := a.eng.UpdateUser(ctx.Context(), code, req.Input())
	if err != nil {
		return nil, mapError(err)
	}
	return u, ctx.JSON(http.StatusOK, u)
}

func (a *API) addRole(ctx forge.Context, req *UserRoleRequest) (*user.User, error) {
	if err := req.Validate(); err != nil {
		return nil, forge.BadRequest(err.Error())
	}
	code, err := parseUserCode(ctx.Param("usercode"))
	if err != nil {
		return nil, forge.BadRequest(err.Error())
	}
	u, err := a.eng.AddRoleToUser(ctx.Context(), code, req.RoleName)
	if err != nil {
		return nil, mapError(err)
	}
	return u, ctx.JSON(http.StatusOK, u)
}

func (a *API) removeRole(ctx forge.Context, req *UserRoleRequest) (*user.User, error) {
	if err := req.Validate(); err != nil {
		return nil, forge.BadRequest(err.Error())
	}
	code, err := parseUserCode(ctx.Param("usercode"))
	if err != nil {
		return nil, forge.BadRequest(err.Error())
	}
	u, err := a.eng.RemoveRoleFromUser(ctx.Context(), code, req.RoleName)
	if err != nil {
		return nil, mapError(err)
	}
	return u, ctx.JSON(http.StatusOK, u)
}

func (a *API) deleteUser(ctx forge.Context, _ *UserCodeRequest) (*user.User, error) {
	code, err := parseUserCode(ctx.Param("usercode"))
	if err != nil {
		return nil, forge.BadRequest(err.Error())
	}
	u, err := a.eng.SoftDeleteUser(ctx.Context(), code)
	if err != nil {
		return nil, mapError(err)
	}
	return u, ctx.JSON(http.StatusOK, u)
}

func (a *API) restoreUser(ctx forge.Context, _ *UserCodeRequest) (*user.User, error) {
	code, err := parseUserCode(ctx.Param("usercode"))
	if err != nil {
		return nil, forge.BadRequest(err.Error())
	}
	u, err := a.eng.RestoreUser(ctx.Context(), code)
	if err != nil {
		return nil, mapError(err)
	}
	return u, ctx.JSON(http.StatusOK, u)
}

func (a *API) countByRole(ctx forge.Context, _ *RoleCountRequest) (*CountResponse, error) {
	total, err := a.eng.CountUsersByRole(ctx.Context(), ctx.Param("rolename"))
	if err != nil {
		return nil, mapError(err)
	}
	resp := &CountResponse{Total: total}
	return resp, ctx.JSON(http.StatusOK, resp)
}
