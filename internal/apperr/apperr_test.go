package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestKindOfClassifiedError(t *testing.T) {
	err := Validationf("term %d outside range", 9)
	require.Equal(t, KindValidation, KindOf(err))
	require.Equal(t, "term 9 outside range", Message(err))
}

func TestKindOfWrappedError(t *testing.T) {
	cause := errors.New("smtp refused")
	err := fmt.Errorf("dispatch: %w", Wrap(KindDelivery, "send failed", cause))

	require.Equal(t, KindDelivery, KindOf(err))
	require.ErrorIs(t, err, cause)
}

func TestKindOfGormNotFound(t *testing.T) {
	err := fmt.Errorf("load student: %w", gorm.ErrRecordNotFound)
	require.Equal(t, KindNotFound, KindOf(err))
}

func TestKindOfTransientMarkers(t *testing.T) {
	require.Equal(t, KindTransient, KindOf(errors.New("pq: deadlock detected")))
	require.Equal(t, KindTransient, KindOf(errors.New("database is locked")))
	require.Equal(t, KindInternal, KindOf(errors.New("disk on fire")))
}

func TestIsKind(t *testing.T) {
	require.True(t, IsKind(Authorizationf("editor %d lacks permission", 4), KindAuthorization))
	require.False(t, IsKind(nil, KindValidation))
}
