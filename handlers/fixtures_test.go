// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/hemangsrr/Ward14VotingTracker/models"
	"github.com/hemangsrr/Ward14VotingTracker/testutil"
)

// ward is a small hierarchy shared by the handler tests:
//
//	leaderA (level2, th01) -> memberA1 (a1), memberA2
//	leaderB (level2, th02) -> memberB1
//
// Voters 1-3 and 6 belong to leaderA, voter 4 to leaderB, voter 5 to nobody.
// Voter 6 is deleted.
type ward struct {
	db *sql.DB

	admin    models.Account
	overview models.Account
	orphan   models.Account // level2 role, no volunteer

	leaderAAccount  models.Account
	leaderBAccount  models.Account
	memberA1Account models.Account

	leaderA  models.Volunteer
	leaderB  models.Volunteer
	memberA1 models.Volunteer
	memberA2 models.Volunteer
	memberB1 models.Volunteer

	voters []models.Voter
}

func setupWard(t *testing.T) *ward {
	t.Helper()

	conn := testutil.SetupTestDB(t)
	w := &ward{db: conn}

	w.admin = testutil.CreateTestAccount(t, conn, "admin", models.RoleAdmin)
	w.overview = testutil.CreateTestAccount(t, conn, "overview", models.RoleOverview)
	w.orphan = testutil.CreateTestAccount(t, conn, "orphan", models.RoleLevel2)
	w.leaderAAccount = testutil.CreateTestAccount(t, conn, "th01", models.RoleLevel2)
	w.leaderBAccount = testutil.CreateTestAccount(t, conn, "th02", models.RoleLevel2)
	w.memberA1Account = testutil.CreateTestAccount(t, conn, "a1", models.RoleLevel1)

	w.leaderA = testutil.CreateTestVolunteer(t, conn, 1, "Leader A", models.LevelTwo, nil, &w.leaderAAccount.ID)
	w.leaderB = testutil.CreateTestVolunteer(t, conn, 2, "Leader B", models.LevelTwo, nil, &w.leaderBAccount.ID)
	w.memberA1 = testutil.CreateTestVolunteer(t, conn, 11, "Member A1", models.LevelOne, &w.leaderA.ID, &w.memberA1Account.ID)
	w.memberA2 = testutil.CreateTestVolunteer(t, conn, 12, "Member A2", models.LevelOne, &w.leaderA.ID, nil)
	w.memberB1 = testutil.CreateTestVolunteer(t, conn, 21, "Member B1", models.LevelOne, &w.leaderB.ID, nil)

	w.voters = []models.Voter{
		testutil.CreateTestVoter(t, conn, 1, "SEC001", testutil.Level1(w.memberA1.ID), testutil.Level2(w.leaderA.ID),
			testutil.Party(models.PartyLDF), testutil.Voted()),
		testutil.CreateTestVoter(t, conn, 2, "SEC002", testutil.Level1(w.memberA1.ID), testutil.Level2(w.leaderA.ID),
			testutil.Party(models.PartyUDF)),
		testutil.CreateTestVoter(t, conn, 3, "SEC003", testutil.Level1(w.memberA2.ID), testutil.Level2(w.leaderA.ID),
			testutil.Party(models.PartyLDF)),
		testutil.CreateTestVoter(t, conn, 4, "SEC004", testutil.Level1(w.memberB1.ID), testutil.Level2(w.leaderB.ID),
			testutil.Party(models.PartyBJP), testutil.Voted()),
		testutil.CreateTestVoter(t, conn, 5, "SEC005"),
		testutil.CreateTestVoter(t, conn, 6, "SEC006", testutil.Level1(w.memberA1.ID), testutil.Level2(w.leaderA.ID),
			testutil.Party(models.PartyLDF), testutil.Status(models.StatusDeleted), testutil.Voted()),
	}

	return w
}

// as attaches the actor for one of the ward's accounts.
func (w *ward) as(r *http.Request, account models.Account) *http.Request {
	var volunteer *models.Volunteer
	for _, v := range []*models.Volunteer{&w.leaderA, &w.leaderB, &w.memberA1} {
		if v.AccountID != nil && *v.AccountID == account.ID {
			volunteer = v
		}
	}
	return testutil.WithActor(r, account, volunteer)
}

func withID(r *http.Request, id int64) *http.Request {
	r.SetPathValue("id", itoa(id))
	return r
}

func run(h http.HandlerFunc, r *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	h(w, r)
	return w
}

func secIDs(voters []models.Voter) []string {
	ids := make([]string, len(voters))
	for i, v := range voters {
		ids[i] = v.SecID
	}
	return ids
}

func itoa(n int64) string {
	return strconv.FormatInt(n, 10)
}
