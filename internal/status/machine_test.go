package status

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vidyadoc/slc-api/internal/apperrors"
)

func TestValidateTransitionCoversEveryPair(t *testing.T) {
	legal := map[Status]map[Status]bool{
		Draft:    {InReview: true, Cancelled: true},
		InReview: {Rejected: true, Accepted: true, Cancelled: true},
		Rejected: {InReview: true, Cancelled: true},
		Accepted: {Issued: true, Archived: true},
		Issued:   {Archived: true},
	}

	for _, current := range All {
		for _, desired := range All {
			err := ValidateTransition(current, desired)
			if current == desired || legal[current][desired] {
				require.NoError(t, err, "%s -> %s should be legal", current, desired)
				continue
			}

			require.Error(t, err, "%s -> %s should be rejected", current, desired)
			tagged, ok := apperrors.As(err)
			require.True(t, ok)
			require.Equal(t, apperrors.KindInvalidTransition, tagged.Kind)
			require.ElementsMatch(t, Strings(AllowedTransitions(current)), tagged.Allowed)
		}
	}
}

func TestValidateTransitionUnknownStatus(t *testing.T) {
	err := ValidateTransition("pending", Draft)
	require.True(t, apperrors.IsKind(err, apperrors.KindValidation))

	err = ValidateTransition(Draft, "published")
	require.True(t, apperrors.IsKind(err, apperrors.KindValidation))
}

func TestStatusPredicates(t *testing.T) {
	editable := map[Status]bool{Draft: true, InReview: true, Rejected: true}
	deletable := map[Status]bool{Draft: true, Rejected: true}
	final := map[Status]bool{Archived: true, Cancelled: true}

	for _, s := range All {
		require.Equal(t, editable[s], CanEdit(s), "CanEdit(%s)", s)
		require.Equal(t, deletable[s], CanDelete(s), "CanDelete(%s)", s)
		require.Equal(t, final[s], IsFinal(s), "IsFinal(%s)", s)
	}

	require.True(t, RequiresReview(InReview))
	require.False(t, RequiresReview(Accepted))
	require.True(t, IsApproved(Accepted))
	require.True(t, IsApproved(Issued))
	require.False(t, IsApproved(Archived))
}

func TestAllowedTransitionsTerminalStatesAreEmpty(t *testing.T) {
	require.Empty(t, AllowedTransitions(Archived))
	require.Empty(t, AllowedTransitions(Cancelled))
}

func TestAllowedTransitionsReturnsCopy(t *testing.T) {
	first := AllowedTransitions(Draft)
	first[0] = Archived
	require.Equal(t, []Status{InReview, Cancelled}, AllowedTransitions(Draft))
}

func TestParse(t *testing.T) {
	s, ok := Parse("in_review")
	require.True(t, ok)
	require.Equal(t, InReview, s)

	_, ok = Parse("published")
	require.False(t, ok)
}
