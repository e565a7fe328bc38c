package config

import (
	"fmt"
	"strings"

	"github.com/san-kum/cooldown/internal/thermal"
)

// Param is one editable scenario field.
type Param struct {
	Name  string
	Label string
	Unit  string
	field func(*thermal.Inputs) *float64
}

// Params lists the scenario fields in form order.
var Params = []Param{
	{"length", "pipe length", "m", func(in *thermal.Inputs) *float64 { return &in.Length }},
	{"od", "outer diameter", "mm", func(in *thermal.Inputs) *float64 { return &in.OuterDiameterMM }},
	{"wall", "wall thickness", "mm", func(in *thermal.Inputs) *float64 { return &in.WallThicknessMM }},
	{"initial", "initial temperature", "°C", func(in *thermal.Inputs) *float64 { return &in.InitialC }},
	{"target", "target temperature", "°C", func(in *thermal.Inputs) *float64 { return &in.TargetC }},
	{"gas-inlet", "gas inlet temperature", "°C", func(in *thermal.Inputs) *float64 { return &in.GasInletC }},
	{"flow", "gas flow", "Nm³/h", func(in *thermal.Inputs) *float64 { return &in.GasFlowNm3h }},
	{"ambient", "ambient temperature", "°C", func(in *thermal.Inputs) *float64 { return &in.AmbientC }},
	{"u", "heat transfer coefficient", "W/m²K", func(in *thermal.Inputs) *float64 { return &in.HeatTransfer }},
	{"efficiency", "cooling efficiency", "0-1", func(in *thermal.Inputs) *float64 { return &in.Efficiency }},
}

// LookupParam finds a field by name, case-insensitively.
func LookupParam(name string) (Param, error) {
	for _, p := range Params {
		if strings.EqualFold(p.Name, name) {
			return p, nil
		}
	}
	names := make([]string, len(Params))
	for i, p := range Params {
		names[i] = p.Name
	}
	return Param{}, fmt.Errorf("unknown parameter %q (available: %s)", name, strings.Join(names, ", "))
}

func (p Param) Get(in thermal.Inputs) float64 { return *p.field(&in) }

func (p Param) Set(in *thermal.Inputs, v float64) { *p.field(in) = v }

// Form holds the scenario the operator is editing and hands it out,
// validated, as a playback.FormReader.
type Form struct {
	in thermal.Inputs
}

func NewForm(in thermal.Inputs) *Form {
	return &Form{in: in}
}

// Inputs returns the current values, or a validation error when any of
// them is non-finite or breaks an ordering rule. Nothing is returned on
// error so no run can start from bad values.
func (f *Form) Inputs() (thermal.Inputs, error) {
	if err := f.in.Validate(); err != nil {
		return thermal.Inputs{}, err
	}
	return f.in, nil
}

// Raw returns the values as edited, valid or not.
func (f *Form) Raw() thermal.Inputs { return f.in }

func (f *Form) Set(name string, v float64) error {
	p, err := LookupParam(name)
	if err != nil {
		return err
	}
	p.Set(&f.in, v)
	return nil
}

func (f *Form) Get(name string) (float64, error) {
	p, err := LookupParam(name)
	if err != nil {
		return 0, err
	}
	return p.Get(f.in), nil
}

// Sweep builds n scenarios from base, stepping one parameter linearly
// from lo to hi inclusive.
func Sweep(base thermal.Inputs, name string, lo, hi float64, n int) ([]thermal.Inputs, error) {
	p, err := LookupParam(name)
	if err != nil {
		return nil, err
	}
	if n < 1 {
		return nil, fmt.Errorf("sweep needs at least one point, got %d", n)
	}
	out := make([]thermal.Inputs, n)
	for i := range out {
		v := lo
		if n > 1 {
			v = lo + (hi-lo)*float64(i)/float64(n-1)
		}
		in := base
		p.Set(&in, v)
		out[i] = in
	}
	return out, nil
}
