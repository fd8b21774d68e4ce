package statussync

import (
	"testing"

	"github.com/Harsha29-kns/scorecraft-backend/models"
	"github.com/Harsha29-kns/scorecraft-backend/realtime"
	"github.com/stretchr/testify/require"
)

func TestSubmitBlocksFullDomainLocally(t *testing.T) {
	bc := newFakeBroadcaster()
	sel := NewSelection(bc, testLogger())
	defer sel.Close()

	domains := []models.Domain{{ID: 1, Name: "AI/ML", Slots: 0}}

	err := sel.Submit(7, 1, domains)
	require.ErrorIs(t, err, ErrDomainHasNoSlots)
	// Полный домен отсекается до сети: интент не отправлялся.
	require.Equal(t, 0, bc.emitCount(realtime.IntentSelectDomain))
	require.Equal(t, SelectionIdle, sel.State())
}

func TestSubmitUnknownDomain(t *testing.T) {
	sel := NewSelection(newFakeBroadcaster(), testLogger())
	defer sel.Close()

	err := sel.Submit(7, 99, []models.Domain{{ID: 1, Slots: 3}})
	require.ErrorIs(t, err, ErrDomainUnknown)
}

func TestSubmitPendingGuard(t *testing.T) {
	bc := newFakeBroadcaster()
	sel := NewSelection(bc, testLogger())
	defer sel.Close()

	domains := []models.Domain{{ID: 1, Slots: 1}}

	require.NoError(t, sel.Submit(7, 1, domains))
	require.Equal(t, SelectionPending, sel.State())

	// Повторный клик до ответа сервера не порождает второй интент.
	err := sel.Submit(7, 1, domains)
	require.ErrorIs(t, err, ErrSelectionPending)
	require.Equal(t, 1, bc.emitCount(realtime.IntentSelectDomain))
}

func TestRejectionClearsPendingAndAllowsRetry(t *testing.T) {
	bc := newFakeBroadcaster()
	sel := NewSelection(bc, testLogger())
	defer sel.Close()

	rejected := 0
	sel.OnRejected = func() { rejected++ }

	domains := []models.Domain{{ID: 1, Slots: 1}, {ID: 2, Slots: 4}}
	require.NoError(t, sel.Submit(7, 1, domains))

	// Слот достался конкурирующей команде.
	bc.push(realtime.EventDomainSelected, realtime.SelectionRejectedFull)

	require.Equal(t, 1, rejected)
	require.Equal(t, SelectionIdle, sel.State())

	// После отказа выбор доступен снова, уже по свежему списку.
	require.NoError(t, sel.Submit(7, 2, domains))
}

func TestConfirmationIsTerminal(t *testing.T) {
	bc := newFakeBroadcaster()
	sel := NewSelection(bc, testLogger())
	defer sel.Close()

	var confirmed *models.Team
	sel.OnConfirmed = func(team *models.Team) { confirmed = team }

	domains := []models.Domain{{ID: 1, Slots: 1}}
	require.NoError(t, sel.Submit(7, 1, domains))

	domainID := 1
	bc.push(realtime.EventDomainSelected, models.Team{ID: 7, Name: "Night Owls", DomainID: &domainID})

	require.NotNil(t, confirmed)
	require.Equal(t, 7, confirmed.ID)
	require.Equal(t, SelectionConfirmed, sel.State())

	// Подтверждённый выбор из клиента не меняется.
	err := sel.Submit(7, 1, domains)
	require.ErrorIs(t, err, ErrSelectionConfirmed)
}

func TestResultWithoutPendingIsIgnored(t *testing.T) {
	bc := newFakeBroadcaster()
	sel := NewSelection(bc, testLogger())
	defer sel.Close()

	confirmed := 0
	sel.OnConfirmed = func(*models.Team) { confirmed++ }

	// Подтверждение без собственной заявки (например, после teardown
	// и повторной подписки) — no-op.
	bc.push(realtime.EventDomainSelected, models.Team{ID: 7})
	require.Equal(t, 0, confirmed)
	require.Equal(t, SelectionIdle, sel.State())
}

// Протокол гонки за последний слот: из двух заявок на домен с одним
// слотом ровно одна подтверждается, вторая получает отказ.
func TestLastSlotRaceExactlyOneWinner(t *testing.T) {
	slots := 1
	domainID := 1

	makeSide := func() (*fakeBroadcaster, *Selection) {
		bc := newFakeBroadcaster()
		sel := NewSelection(bc, testLogger())
		// Источник состояния: первым пришёл — первым обслужен.
		bc.onEmit = func(event string, payload interface{}) {
			if event != realtime.IntentSelectDomain {
				return
			}
			req := payload.(selectionRequest)
			if slots > 0 {
				slots--
				bc.push(realtime.EventDomainSelected, models.Team{ID: req.TeamID, DomainID: &domainID})
			} else {
				bc.push(realtime.EventDomainSelected, realtime.SelectionRejectedFull)
			}
		}
		return bc, sel
	}

	_, selA := makeSide()
	defer selA.Close()
	_, selB := makeSide()
	defer selB.Close()

	// Обе команды видят один свободный слот в последнем снапшоте.
	domains := []models.Domain{{ID: domainID, Slots: 1}}
	require.NoError(t, selA.Submit(1, domainID, domains))
	require.NoError(t, selB.Submit(2, domainID, domains))

	states := []SelectionState{selA.State(), selB.State()}
	require.Contains(t, states, SelectionConfirmed)
	require.Contains(t, states, SelectionIdle)
	require.Equal(t, 0, slots)
}
