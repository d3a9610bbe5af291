package handlers

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"gatepass-backend/internal/models"
	"gatepass-backend/pkg/verifier"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func passBody(purpose string, passType models.PassType) map[string]string {
	return map[string]string{
		"purpose":   purpose,
		"type":      string(passType),
		"validDate": "2026-03-02",
	}
}

func (e *testEnv) createPass(t *testing.T, token string, body map[string]string) *models.GatePass {
	t.Helper()
	w := e.do(t, "POST", "/passes", body, token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp CreatePassResponse
	decode(t, w, &resp)
	return resp.Pass
}

func TestPassHandler_CreatePass_Visitor(t *testing.T) {
	env := staticEnv(t)
	visitor, token := env.register(t, "Jane", "jane@example.com", models.RoleVisitor)

	w := env.do(t, "POST", "/passes", passBody("Interview with HR", models.PassTypeVisitor), token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp CreatePassResponse
	decode(t, w, &resp)
	assert.Equal(t, models.ViewMyPasses, resp.View)
	assert.Regexp(t, `^GP-[0-9A-F-]+$`, resp.Pass.ID)
	assert.Equal(t, visitor.ID, resp.Pass.VisitorID)
	assert.Equal(t, "jane@example.com", resp.Pass.VisitorEmail)
	assert.Equal(t, models.StatusPending, resp.Pass.Status)
	assert.Equal(t, models.DefaultDepartment, resp.Pass.Department)
	assert.Equal(t, testReasoning, resp.Pass.AIVerification)
	assert.Nil(t, resp.Pass.CheckInTime)
}

func TestPassHandler_CreatePass_Guest(t *testing.T) {
	env := staticEnv(t)

	w := env.do(t, "POST", "/passes", passBody("Delivery", models.PassTypeMaterial), "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "visitor name and email are required")

	body := passBody("Delivery", models.PassTypeMaterial)
	body["visitorName"] = "Courier"
	body["visitorEmail"] = "courier@example.com"
	body["department"] = "Warehouse"

	w = env.do(t, "POST", "/passes", body, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp CreatePassResponse
	decode(t, w, &resp)
	assert.Equal(t, models.ViewAllPasses, resp.View)
	assert.Equal(t, models.GuestVisitorID, resp.Pass.VisitorID)
	assert.Equal(t, "Warehouse", resp.Pass.Department)
}

func TestPassHandler_CreatePass_Validation(t *testing.T) {
	env := staticEnv(t)
	_, token := env.register(t, "Jane", "jane@example.com", models.RoleVisitor)

	badType := passBody("Meeting", "SPACESHIP")
	badDate := passBody("Meeting", models.PassTypeVisitor)
	badDate["validDate"] = "02/03/2026"
	noPurpose := passBody("", models.PassTypeVisitor)

	for name, body := range map[string]map[string]string{
		"bad type":   badType,
		"bad date":   badDate,
		"no purpose": noPurpose,
	} {
		t.Run(name, func(t *testing.T) {
			w := env.do(t, "POST", "/passes", body, token)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, "Validation failed", decode(t, w, nil).Message)
		})
	}

	assert.Empty(t, env.manager.AllPasses())
}

func TestPassHandler_CreatePass_VerifierFailure(t *testing.T) {
	env := newTestEnv(t, verifier.Func(func(context.Context, string, string) (*verifier.Result, error) {
		return nil, errors.New("model overloaded")
	}))
	_, token := env.register(t, "Jane", "jane@example.com", models.RoleVisitor)

	w := env.do(t, "POST", "/passes", passBody("Meeting", models.PassTypeVisitor), token)
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, w.Body.String(), "model overloaded")
	assert.Empty(t, env.manager.AllPasses())
}

func TestPassHandler_UpdateStatus(t *testing.T) {
	env := staticEnv(t)
	_, visitorToken := env.register(t, "Jane", "jane@example.com", models.RoleVisitor)
	_, guardToken := env.register(t, "Guard", "guard@example.com", models.RoleSecurity)

	pass := env.createPass(t, visitorToken, passBody("Site visit", models.PassTypeVisitor))
	path := "/passes/" + pass.ID + "/status"

	w := env.do(t, "PATCH", path, map[string]string{"status": "APPROVED"}, visitorToken)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = env.do(t, "PATCH", path, map[string]string{"status": "APPROVED"}, guardToken)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var updated models.GatePass
	decode(t, w, &updated)
	assert.Equal(t, models.StatusApproved, updated.Status)

	w = env.do(t, "PATCH", path, map[string]string{"status": "APPROVED"}, guardToken)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = env.do(t, "PATCH", path, map[string]string{"status": "CHECKED_IN"}, env.adminToken(t))
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &updated)
	assert.Equal(t, models.StatusCheckedIn, updated.Status)
	require.NotNil(t, updated.CheckInTime)
	assert.Nil(t, updated.CheckOutTime)

	w = env.do(t, "PATCH", path, map[string]string{"status": "LOST"}, guardToken)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, "PATCH", "/passes/GP-NOPE/status", map[string]string{"status": "APPROVED"}, guardToken)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPassHandler_GetPass(t *testing.T) {
	env := staticEnv(t)
	_, janeToken := env.register(t, "Jane", "jane@example.com", models.RoleVisitor)
	_, bobToken := env.register(t, "Bob", "bob@example.com", models.RoleVisitor)

	pass := env.createPass(t, janeToken, passBody("Audit", models.PassTypeVisitor))

	assert.Equal(t, http.StatusOK, env.do(t, "GET", "/passes/"+pass.ID, nil, janeToken).Code)
	assert.Equal(t, http.StatusForbidden, env.do(t, "GET", "/passes/"+pass.ID, nil, bobToken).Code)
	assert.Equal(t, http.StatusOK, env.do(t, "GET", "/passes/"+pass.ID, nil, env.adminToken(t)).Code)
	assert.Equal(t, http.StatusNotFound, env.do(t, "GET", "/passes/GP-NOPE", nil, janeToken).Code)

	w := env.do(t, "GET", "/passes/mine", nil, bobToken)
	require.Equal(t, http.StatusOK, w.Code)
	var mine []models.GatePass
	decode(t, w, &mine)
	assert.Empty(t, mine)
}

func TestPassHandler_GetPasses(t *testing.T) {
	env := staticEnv(t)
	_, token := env.register(t, "Jane", "jane@example.com", models.RoleVisitor)

	first := env.createPass(t, token, passBody("Meeting", models.PassTypeVisitor))
	second := env.createPass(t, token, passBody("Deliver parts", models.PassTypeMaterial))
	_, err := env.manager.UpdateStatus(context.Background(), &models.User{ID: "admin-001", Role: models.RoleAdmin}, first.ID, models.StatusRejected)
	require.NoError(t, err)

	var passes []models.GatePass
	decode(t, env.do(t, "GET", "/passes", nil, env.adminToken(t)), &passes)
	require.Len(t, passes, 2)
	// newest first
	assert.Equal(t, second.ID, passes[0].ID)

	decode(t, env.do(t, "GET", "/passes?status=rejected", nil, env.adminToken(t)), &passes)
	require.Len(t, passes, 1)
	assert.Equal(t, first.ID, passes[0].ID)

	decode(t, env.do(t, "GET", "/passes?type=MATERIAL&status=PENDING", nil, env.adminToken(t)), &passes)
	require.Len(t, passes, 1)
	assert.Equal(t, second.ID, passes[0].ID)
}
