package experiment

import (
	"fmt"

	"github.com/san-kum/physlab/internal/config"
	"github.com/san-kum/physlab/internal/physics"
)

// setLabParam applies a named parameter through the lab model's own setter so
// names and validation match the interactive labs.
func setLabParam(cfg *config.Config, lab, name string, v float64) error {
	switch lab {
	case "pendulum":
		p, err := physics.NewPendulum(cfg.Pendulum)
		if err != nil {
			return err
		}
		if err := p.SetParam(name, v); err != nil {
			return err
		}
		cfg.Pendulum = p.Config()
	case "airtable":
		a, err := physics.NewAirTable(cfg.AirTable)
		if err != nil {
			return err
		}
		if err := a.SetParam(name, v); err != nil {
			return err
		}
		cfg.AirTable = a.Config()
	case "centripetal":
		c, err := physics.NewCentripetal(cfg.Centripetal)
		if err != nil {
			return err
		}
		if err := c.SetParam(name, v); err != nil {
			return err
		}
		cfg.Centripetal = c.Config()
	default:
		return fmt.Errorf("unknown lab: %s", lab)
	}
	return nil
}
