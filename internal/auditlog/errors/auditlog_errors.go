package auditlogerrors

import (
	"net/http"

	"github.com/coffeebean-kenobi/shifteditor-sub001/internal/shared/apperror"
)

var (
	ErrInvalidStoreID = apperror.New(
		apperror.CodeInvalidInput,
		"Invalid store ID",
		http.StatusBadRequest,
	)
)
