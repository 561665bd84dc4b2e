package services

import "authway/internal/models"

// Допустимые переходы статусов онбординга.
// Строго вперёд: New → CodeVerified → Done → Finished, без откатов и прыжков.
// Finished — финалка, из неё переходов нет (повторная загрузка картинки
// статус не трогает).
var StatusTransitions = map[models.AuthStatus]map[models.AuthStatus]bool{
	models.StatusNew:          {models.StatusCodeVerified: true},
	models.StatusCodeVerified: {models.StatusDone: true},
	models.StatusDone:         {models.StatusFinished: true},
	models.StatusFinished:     {},
}

func CanAdvance(current, to models.AuthStatus) bool {
	nexts, ok := StatusTransitions[current]
	if !ok {
		return false
	}
	return nexts[to]
}
