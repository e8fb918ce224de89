package importer

// error_messages.go maps technical errors to user messages with a support
// code. Sentinel errors are matched with errors.Is; everything else falls
// back to case-insensitive substring patterns. The first match wins.

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/JonMunkholm/bookimport/internal/catalog"
	"github.com/JonMunkholm/bookimport/internal/sheet"
	"github.com/JonMunkholm/bookimport/internal/submit"
)

// ErrNoBatch is returned by Submit when no validated batch is loaded.
var ErrNoBatch = errors.New("no validated batch to submit")

// ErrSubmitInFlight is returned by Submit while a submission is pending.
var ErrSubmitInFlight = errors.New("submission already in flight")

// UserMessage is what the console shows for an error.
type UserMessage struct {
	Message string // What happened
	Action  string // What to do about it
	Code    string // Support reference
}

type errorMatch struct {
	target  error
	pattern string
	msg     UserMessage
}

var errorMatches = []errorMatch{
	// File errors
	{target: sheet.ErrTooLarge, msg: UserMessage{
		Message: "El archivo supera el tamaño máximo permitido",
		Action:  "Divida el archivo en partes más pequeñas",
		Code:    "FILE001",
	}},
	{target: sheet.ErrUnsupportedFormat, msg: UserMessage{
		Message: "El archivo no es una hoja de cálculo compatible",
		Action:  "Use un archivo .xlsx o .csv",
		Code:    "FILE002",
	}},
	{pattern: "open workbook", msg: UserMessage{
		Message: "No se pudo abrir el libro de Excel",
		Action:  "Verifique que el archivo no esté dañado",
		Code:    "FILE003",
	}},
	{pattern: "parse csv", msg: UserMessage{
		Message: "El archivo CSV tiene un formato inválido",
		Action:  "Revise las comillas y separadores del archivo",
		Code:    "FILE004",
	}},
	{pattern: "no such file", msg: UserMessage{
		Message: "No se seleccionó ningún archivo",
		Action:  "Seleccione un archivo para cargar",
		Code:    "FILE005",
	}},
	{target: catalog.ErrEmptySheet, msg: UserMessage{
		Message: MsgEmptySheet,
		Action:  "Agregue filas de datos bajo la fila de encabezados",
		Code:    "FILE006",
	}},
	{target: sheet.ErrNoSheet, msg: UserMessage{
		Message: "El libro no contiene hojas",
		Action:  "Verifique que el archivo tenga al menos una hoja",
		Code:    "FILE007",
	}},

	// Batch and request errors
	{target: ErrNoBatch, msg: UserMessage{
		Message: "No hay un lote validado para enviar",
		Action:  "Cargue un archivo y espere la validación",
		Code:    "UPL001",
	}},
	{target: ErrTooManyUploads, msg: UserMessage{
		Message: "El sistema está procesando otras cargas",
		Action:  "Espere un momento e intente nuevamente",
		Code:    "UPL002",
	}},
	{target: ErrSubmitInFlight, msg: UserMessage{
		Message: "Ya hay un envío en curso",
		Action:  "Espere a que termine el envío actual",
		Code:    "UPL003",
	}},
	{target: context.Canceled, msg: UserMessage{
		Message: "La solicitud fue cancelada",
		Action:  "Intente nuevamente",
		Code:    "UPL004",
	}},
	{target: context.DeadlineExceeded, msg: UserMessage{
		Message: "La solicitud excedió el tiempo de espera",
		Action:  "Intente con un archivo más pequeño o revise su conexión",
		Code:    "UPL005",
	}},

	// Catalog server errors
	{target: submit.ErrNotJSON, msg: UserMessage{
		Message: MsgInvalidResponse,
		Action:  "Intente nuevamente más tarde",
		Code:    "NET001",
	}},
	{pattern: "connection refused", msg: UserMessage{
		Message: "No se pudo contactar al servidor del catálogo",
		Action:  "Intente nuevamente en unos momentos",
		Code:    "NET002",
	}},

	// Throttling
	{pattern: "rate limit", msg: UserMessage{
		Message: "Demasiadas solicitudes",
		Action:  "Espere un momento antes de intentar nuevamente",
		Code:    "RATE001",
	}},
}

// defaultMessage is the ERR000 fallback. The technical error only goes to
// the logs.
var defaultMessage = UserMessage{
	Message: "Ocurrió un error inesperado",
	Action:  "Intente nuevamente o contacte a soporte",
	Code:    "ERR000",
}

// MapError converts err to a user message. A nil error maps to the zero value.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}
	for _, m := range errorMatches {
		if m.target != nil && errors.Is(err, m.target) {
			return m.msg
		}
	}
	text := strings.ToLower(err.Error())
	for _, m := range errorMatches {
		if m.pattern != "" && strings.Contains(text, m.pattern) {
			return m.msg
		}
	}
	return defaultMessage
}

// FormatUserError renders "Message (Código: XXX). Action".
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Código: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err maps to a specific message rather than
// the ERR000 fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}
