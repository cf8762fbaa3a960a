package integration

import (
	"net/http"
	"testing"

	"github.com/dimitrije/capsule-api/internal/events"
	"github.com/dimitrije/capsule-api/pkg/dto"
	"github.com/dimitrije/capsule-api/tests/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTP_Integration_FullScenario(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	tdb := setupTest(t)
	st := newStack(tdb)
	router := st.router()

	alice := testutil.NewHTTPTestClient(t, router, uuid.New())
	bob := testutil.NewHTTPTestClient(t, router, uuid.New())
	eve := testutil.NewHTTPTestClient(t, router, uuid.New())

	rec := alice.POST("/api/v1/capsules", nil)
	testutil.AssertStatus(t, rec, http.StatusCreated)
	var capsule dto.CapsuleResponse
	testutil.ParseJSON(t, rec, &capsule)
	require.NotEmpty(t, capsule.InviteCode)
	assert.Equal(t, "a", capsule.Side)

	capsulePath := "/api/v1/capsules/" + capsule.ID.String()

	// Items cannot be created before the partner joins.
	rec = alice.POST(capsulePath+"/items", dto.CreateItemRequest{Title: "Too early"})
	testutil.AssertStatus(t, rec, http.StatusConflict)

	rec = bob.POST("/api/v1/invites/join", dto.JoinCapsuleRequest{Code: capsule.InviteCode})
	testutil.AssertStatus(t, rec, http.StatusOK)
	var joined dto.CapsuleResponse
	testutil.ParseJSON(t, rec, &joined)
	assert.Equal(t, "active", joined.Status)
	assert.Equal(t, "b", joined.Side)

	rec = eve.POST("/api/v1/invites/join", dto.JoinCapsuleRequest{Code: capsule.InviteCode})
	testutil.AssertStatus(t, rec, http.StatusConflict)

	rec = eve.GET(capsulePath)
	testutil.AssertStatus(t, rec, http.StatusForbidden)

	rec = alice.POST(capsulePath+"/items", dto.CreateItemRequest{Kind: "plan", Title: "Dinner on Friday"})
	testutil.AssertStatus(t, rec, http.StatusCreated)
	var item dto.ItemResponse
	testutil.ParseJSON(t, rec, &item)
	itemPath := "/api/v1/items/" + item.ID.String()

	yes := true
	testutil.AssertStatus(t, alice.POST(itemPath+"/vote", dto.VoteRequest{Value: &yes}), http.StatusOK)
	testutil.AssertStatus(t, bob.POST(itemPath+"/vote", dto.VoteRequest{Value: &yes}), http.StatusOK)

	// Plan items have no resolving phase.
	testutil.AssertStatus(t, bob.POST(itemPath+"/resolve", nil), http.StatusConflict)

	testutil.AssertStatus(t, bob.POST(itemPath+"/decision", nil), http.StatusOK)
	testutil.AssertStatus(t, eve.POST(itemPath+"/confirm", nil), http.StatusForbidden)

	rec = alice.POST(itemPath+"/confirm", nil)
	testutil.AssertStatus(t, rec, http.StatusOK)
	testutil.ParseJSON(t, rec, &item)
	assert.Equal(t, "pending_decision", item.Status)
	assert.True(t, item.ConfirmedByA)
	assert.False(t, item.ConfirmedByB)

	rec = bob.POST(itemPath+"/confirm", nil)
	testutil.AssertStatus(t, rec, http.StatusOK)
	testutil.ParseJSON(t, rec, &item)
	assert.Equal(t, "confirmed", item.Status)

	testutil.AssertStatus(t, alice.POST(itemPath+"/complete", nil), http.StatusOK)

	rec = alice.POST(capsulePath+"/vault", dto.UploadVaultItemRequest{Title: "Receipt", PayloadRef: "external://receipt"})
	testutil.AssertStatus(t, rec, http.StatusCreated)
	var vaultItem dto.VaultItemResponse
	testutil.ParseJSON(t, rec, &vaultItem)
	vaultPath := "/api/v1/vault/" + vaultItem.ID.String()

	testutil.AssertStatus(t, alice.POST(vaultPath+"/approve", nil), http.StatusOK)
	rec = bob.POST(vaultPath+"/approve", nil)
	testutil.AssertStatus(t, rec, http.StatusOK)
	testutil.ParseJSON(t, rec, &vaultItem)
	assert.Equal(t, "approved", vaultItem.Status)

	testutil.AssertStatus(t, bob.GET(vaultPath+"/download-url"), http.StatusServiceUnavailable)

	rec = bob.GET(capsulePath + "/counts")
	testutil.AssertStatus(t, rec, http.StatusOK)
	var counts dto.CountsResponse
	testutil.ParseJSON(t, rec, &counts)
	assert.Equal(t, 1, counts.Items["completed"])
	assert.Equal(t, 1, counts.Vault["approved"])

	testutil.AssertStatus(t, bob.POST(capsulePath+"/dissolve", nil), http.StatusOK)
	testutil.AssertStatus(t, alice.POST(capsulePath+"/dissolve", nil), http.StatusConflict)

	assert.Equal(t, 1, st.publisher.Count(events.TopicItemConfirmed))
	assert.Equal(t, 1, st.publisher.Count(events.TopicVaultApproved))
	assert.Equal(t, 1, st.publisher.Count(events.TopicCapsuleDissolved))
}
