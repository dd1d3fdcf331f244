package wizard

import (
	"math"
	"strconv"
	"strings"
)

// Position 向导进度位置，1..5 为向导页面，6 表示补充注册已完成
type Position int

const (
	MinPosition Position = 1
	MaxPosition Position = 6
)

const (
	PositionWelcome   Position = 1
	PositionPersonal  Position = 2
	PositionCondo     Position = 3
	PositionTerms     Position = 4
	PositionSuccess   Position = 5
	PositionCompleted Position = 6
)

const (
	RouteWelcome  = "/app/cadastro-complementar/boas-vindas"
	RoutePersonal = "/app/cadastro-complementar/dados-pessoais"
	RouteCondo    = "/app/cadastro-complementar/condominio"
	RouteTerms    = "/app/cadastro-complementar/termos"
	RouteSuccess  = "/app/cadastro-complementar/sucesso"

	// PostWizardRoute 完成注册后的目的地，不属于向导页面
	PostWizardRoute = "/app/caronas/listar"
	LoginRoute      = "/login"
	// SessionExpiredRoute 远端返回 401 后的跳转
	SessionExpiredRoute = "/login?sessionExpired=true"
)

var routes = map[Position]string{
	PositionWelcome:   RouteWelcome,
	PositionPersonal:  RoutePersonal,
	PositionCondo:     RouteCondo,
	PositionTerms:     RouteTerms,
	PositionSuccess:   RouteSuccess,
	PositionCompleted: PostWizardRoute,
}

// 只收录向导页面 1..5，保持一一对应
var positionsByRoute = map[string]Position{
	RouteWelcome:  PositionWelcome,
	RoutePersonal: PositionPersonal,
	RouteCondo:    PositionCondo,
	RouteTerms:    PositionTerms,
	RouteSuccess:  PositionSuccess,
}

// RouteForPosition 返回位置对应的路由，未知位置回退到欢迎页
func RouteForPosition(p Position) string {
	if route, ok := routes[p]; ok {
		return route
	}
	return routes[MinPosition]
}

func IsValid(p Position) bool {
	return p >= MinPosition && p <= MaxPosition
}

func IsComplete(p Position) bool {
	return p >= MaxPosition
}

// Next 下一个位置，到 6 为止
func Next(p Position) Position {
	if p+1 > MaxPosition {
		return MaxPosition
	}
	return p + 1
}

// Previous 上一个位置，到 1 为止
func Previous(p Position) Position {
	if p-1 < MinPosition {
		return MinPosition
	}
	return p - 1
}

// PositionForRoute 向导页面路由反查位置，结尾的斜杠和查询串会被忽略
func PositionForRoute(route string) (Position, bool) {
	p, ok := positionsByRoute[normalizeRoute(route)]
	return p, ok
}

func IsWizardRoute(route string) bool {
	_, ok := PositionForRoute(route)
	return ok
}

// ParsePosition 从远端 JSON 或表单值解析位置，只接受整数值。
// nil、非整数的浮点数、非数字字符串都返回 false。
func ParsePosition(v any) (Position, bool) {
	switch n := v.(type) {
	case Position:
		return n, true
	case int:
		return Position(n), true
	case int32:
		return Position(n), true
	case int64:
		return Position(n), true
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) || n != math.Trunc(n) {
			return 0, false
		}
		return Position(int(n)), true
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(n))
		if err != nil {
			return 0, false
		}
		return Position(i), true
	default:
		return 0, false
	}
}

func normalizeRoute(route string) string {
	if i := strings.IndexAny(route, "?#"); i >= 0 {
		route = route[:i]
	}
	if len(route) > 1 {
		route = strings.TrimRight(route, "/")
	}
	return route
}
