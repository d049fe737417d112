package domain

// Status 审核状态
type Status string

const (
	StatusPendiente Status = "pendiente"
	StatusAprobado  Status = "aprobado"
	StatusRechazado Status = "rechazado"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPendiente, StatusAprobado, StatusRechazado:
		return true
	}
	return false
}

func (s Status) Terminal() bool { return s == StatusAprobado || s == StatusRechazado }

// Transition 校验状态迁移：只允许 pendiente -> aprobado|rechazado。
// 目标与当前相同返回 changed=false（幂等），终态之间互转返回 Conflict。
func (s Status) Transition(to Status) (changed bool, err error) {
	if !to.Valid() || to == StatusPendiente {
		return false, Invalid("status", "estado destino inválido")
	}
	if s == to {
		return false, nil
	}
	if s.Terminal() {
		return false, Conflict("record already %s", s)
	}
	return true, nil
}
