package scheduler

import (
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"agave/internal/model"
)

const helpText = `Comandos disponibles:
• /precio &lt;costo&gt; [margen]
• /clasificar &lt;precio&gt; &lt;costo&gt;
• /simular &lt;precio&gt; &lt;costo&gt; &lt;descuento%&gt; [unidades/mes]
• /descuentos &lt;precio&gt; &lt;costo&gt; [unidades/mes]
• /rangos
• /catalogo

El margen acepta 0.27 o 27.`

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return helpText
	}
	name := strings.ToLower(fields[0])
	// Strip a "@botname" suffix added in group chats.
	if i := strings.IndexByte(name, '@'); i > 0 {
		name = name[:i]
	}
	args := fields[1:]

	reply, err := s.dispatch(name, args)
	if err != nil {
		s.Logger.Warn("command failed", zap.String("command", name), zap.Error(err))
		return fmt.Sprintf("❌ %v\n\n%s", err, helpText)
	}
	return reply
}

func (s *Scheduler) dispatch(name string, args []string) (string, error) {
	switch name {
	case "/precio", "/price":
		if len(args) < 1 || len(args) > 2 {
			return "", fmt.Errorf("uso: /precio <costo> [margen]")
		}
		cost, err := parseNumber("costo", args[0])
		if err != nil {
			return "", err
		}
		var target *model.Fraction
		if len(args) == 2 {
			m, err := parseMargin(args[1])
			if err != nil {
				return "", err
			}
			target = &m
		}
		_, report, err := s.Pricing.Price(cost, target)
		return report, err

	case "/clasificar", "/classify":
		if len(args) != 2 {
			return "", fmt.Errorf("uso: /clasificar <precio> <costo>")
		}
		nums, err := parseNumbers([]string{"precio", "costo"}, args)
		if err != nil {
			return "", err
		}
		_, report, err := s.Pricing.Classify(nums[0], nums[1])
		return report, err

	case "/simular", "/simulate":
		if len(args) < 3 || len(args) > 4 {
			return "", fmt.Errorf("uso: /simular <precio> <costo> <descuento%%> [unidades/mes]")
		}
		nums, err := parseNumbers([]string{"precio", "costo", "descuento"}, args[:3])
		if err != nil {
			return "", err
		}
		units, err := parseUnits(args[3:])
		if err != nil {
			return "", err
		}
		_, report, err := s.Pricing.Simulate(nums[0], nums[1], model.Percent(nums[2]), units)
		return report, err

	case "/descuentos", "/discounts":
		if len(args) < 2 || len(args) > 3 {
			return "", fmt.Errorf("uso: /descuentos <precio> <costo> [unidades/mes]")
		}
		nums, err := parseNumbers([]string{"precio", "costo"}, args[:2])
		if err != nil {
			return "", err
		}
		units, err := parseUnits(args[2:])
		if err != nil {
			return "", err
		}
		_, report, err := s.Pricing.Discounts(nums[0], nums[1], units)
		return report, err

	case "/rangos", "/ranges":
		return s.Pricing.Ranges(), nil

	case "/catalogo", "/catalog":
		return s.CatalogReport(s.Ctx)

	default:
		return helpText, nil
	}
}

// parseNumber accepts both "7.10" and "7,10".
func parseNumber(name, raw string) (float64, error) {
	v, err := strconv.ParseFloat(strings.Replace(raw, ",", ".", 1), 64)
	if err != nil {
		return 0, fmt.Errorf("%s inválido: %q", name, raw)
	}
	return v, nil
}

func parseNumbers(names, raw []string) ([]float64, error) {
	out := make([]float64, len(raw))
	for i, r := range raw {
		v, err := parseNumber(names[i], r)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

// parseMargin reads "0.27", "27" or "27%". Values of 1 or more are percentages.
func parseMargin(raw string) (model.Fraction, error) {
	v, err := parseNumber("margen", strings.TrimSuffix(raw, "%"))
	if err != nil {
		return 0, err
	}
	if v >= 1 || strings.HasSuffix(raw, "%") {
		return model.Percent(v).Fraction(), nil
	}
	return model.Fraction(v), nil
}

// parseUnits returns -1 (use the configured default) when no value is given.
func parseUnits(raw []string) (int, error) {
	if len(raw) == 0 {
		return -1, nil
	}
	n, err := strconv.Atoi(raw[0])
	if err != nil || n < 0 {
		return 0, fmt.Errorf("unidades inválidas: %q", raw[0])
	}
	return n, nil
}
