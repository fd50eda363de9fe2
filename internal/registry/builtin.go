package registry

import (
	"github.com/FormingWorlds/proteus-config/internal/config"
	"github.com/zclconf/go-cty/cty"
)

// Helper constructors keep the schema declarations below compact. The
// required/optional split is enforced by checkParam at registration.

func req(name string, ty cty.Type, desc string) *config.ParamSpec {
	return &config.ParamSpec{Name: name, Type: ty, Description: desc, Required: true}
}

func opt(name string, ty cty.Type, def cty.Value, desc string) *config.ParamSpec {
	return &config.ParamSpec{Name: name, Type: ty, Description: desc, Default: &def}
}

func str(name, def, desc string) *config.ParamSpec {
	return opt(name, cty.String, cty.StringVal(def), desc)
}

func num(name string, def float64, desc string) *config.ParamSpec {
	return opt(name, cty.Number, cty.NumberFloatVal(def), desc)
}

func intg(name string, def int64, desc string) *config.ParamSpec {
	return opt(name, cty.Number, cty.NumberIntVal(def), desc)
}

func boolean(name string, def bool, desc string) *config.ParamSpec {
	return opt(name, cty.Bool, cty.BoolVal(def), desc)
}

func mod(name string, params ...*config.ParamSpec) *config.ModuleSpec {
	return &config.ModuleSpec{Module: name, Params: params}
}

// Builtin returns the registry describing the full set of physical
// sections and their module implementations. Section order is the fixed
// declaration order the resolver walks; it follows the coupling chain of
// the simulation (stellar input before climate before interior), not the
// alphabet.
func Builtin() *Registry {
	r := New()

	registerParams(r)
	registerStar(r)
	registerOrbit(r)
	registerStruct(r)
	registerAtmosClim(r)
	registerEscape(r)
	registerInterior(r)
	registerOutgas(r)
	registerDelivery(r)
	registerAtmosChem(r)
	registerObserve(r)

	return r
}

// registerParams declares the non-module `params` tree: output control,
// time-stepping, and the stop conditions. Every nested table is its own
// section with a dotted name so that unknown-key checking stays local.
func registerParams(r *Registry) {
	r.RegisterSection(&SectionSpec{Name: "params", Implicit: true})

	r.RegisterSection(&SectionSpec{
		Name:     "params.out",
		Implicit: true,
		Common: []*config.ParamSpec{
			req("path", cty.String, "output directory for this run"),
			str("logging", "INFO", "log verbosity for the simulation loop"),
			intg("plot_mod", 10, "plotting frequency in iterations, 0 disables"),
			str("plot_fmt", "png", "image format for plots"),
			intg("write_mod", 1, "helpfile write frequency in iterations"),
			boolean("archive", false, "archive output data as tarballs"),
		},
	})

	r.RegisterSection(&SectionSpec{
		Name:     "params.dt",
		Implicit: true,
		Common: []*config.ParamSpec{
			num("minimum", 3e2, "minimum time step in years"),
			num("maximum", 1e7, "maximum time step in years"),
			num("initial", 1e3, "initial time step in years"),
			num("starspec", 1e9, "interval for updating the stellar spectrum, years"),
			num("starinst", 1e1, "interval for updating instellation, years"),
			str("method", "adaptive", "time-stepping method: proportional, adaptive, or maximum"),
		},
	})
	r.RegisterSection(&SectionSpec{
		Name:     "params.dt.proportional",
		Implicit: true,
		Common: []*config.ParamSpec{
			num("propconst", 52.0, "proportionality constant"),
		},
	})
	r.RegisterSection(&SectionSpec{
		Name:     "params.dt.adaptive",
		Implicit: true,
		Common: []*config.ParamSpec{
			num("atol", 0.02, "absolute tolerance on step size"),
			num("rtol", 0.10, "relative tolerance on step size"),
		},
	})
	r.RegisterSection(&SectionSpec{Name: "params.dt.maximum", Implicit: true})

	r.RegisterSection(&SectionSpec{Name: "params.stop", Implicit: true})
	r.RegisterSection(&SectionSpec{
		Name:     "params.stop.iters",
		Implicit: true,
		Common: []*config.ParamSpec{
			boolean("enabled", true, "stop when the iteration budget is exhausted"),
			intg("minimum", 5, "minimum number of iterations"),
			intg("maximum", 9000, "maximum number of iterations"),
		},
	})
	r.RegisterSection(&SectionSpec{
		Name:     "params.stop.time",
		Implicit: true,
		Common: []*config.ParamSpec{
			boolean("enabled", true, "stop when the maximum model time is reached"),
			num("minimum", 1e3, "model time required before stopping, years"),
			num("maximum", 4.567e+9, "model time at which to always stop, years"),
		},
	})
	r.RegisterSection(&SectionSpec{
		Name:     "params.stop.solid",
		Implicit: true,
		Common: []*config.ParamSpec{
			boolean("enabled", true, "stop when the mantle has solidified"),
			num("phi_crit", 0.005, "melt fraction below which the mantle counts as solid"),
		},
	})
	r.RegisterSection(&SectionSpec{
		Name:     "params.stop.radeqm",
		Implicit: true,
		Common: []*config.ParamSpec{
			boolean("enabled", true, "stop at global radiative equilibrium"),
			num("atol", 0.2, "absolute tolerance on net flux, W m-2"),
			num("rtol", 1e-3, "relative tolerance on net flux"),
		},
	})
	r.RegisterSection(&SectionSpec{
		Name:     "params.stop.steady",
		Implicit: true,
		Common: []*config.ParamSpec{
			boolean("enabled", false, "stop in a steady state"),
			num("F_crit", 0.2, "maximum absolute net flux at steady state, W m-2"),
			num("dprel", 1e-9, "maximum relative change in melt fraction"),
		},
	})
	r.RegisterSection(&SectionSpec{
		Name:     "params.stop.escape",
		Implicit: true,
		Common: []*config.ParamSpec{
			boolean("enabled", false, "stop when the atmosphere has escaped"),
			req("p_stop", cty.Number, "surface pressure below which the atmosphere counts as escaped, bar"),
		},
	})
}

func registerStar(r *Registry) {
	r.RegisterSection(&SectionSpec{
		Name: "star",
		Common: []*config.ParamSpec{
			req("mass", cty.Number, "stellar mass, solar masses"),
			num("age_ini", 0.100, "stellar age at simulation start, Gyr"),
		},
	})
	r.RegisterModule("star", mod("dummy",
		num("radius", 1.0, "fixed stellar radius, solar radii"),
		num("Teff", 5772.0, "fixed effective temperature, K"),
	))
	r.RegisterModule("star", mod("mors",
		str("tracks", "spada", "evolution track set to interpolate"),
		num("rot_pctle", 50.0, "rotation percentile within the cluster distribution"),
		num("age_now", 4.567, "observed stellar age, Gyr"),
		req("spec", cty.String, "stellar spectrum file name"),
	))
}

func registerOrbit(r *Registry) {
	r.RegisterSection(&SectionSpec{
		Name: "orbit",
		Common: []*config.ParamSpec{
			req("semimajoraxis", cty.Number, "semi-major axis, AU"),
			num("eccentricity", 0.0, "orbital eccentricity"),
			num("zenith_angle", 48.19, "characteristic zenith angle of instellation, degrees"),
			num("s0_factor", 0.375, "instellation scale factor"),
		},
	})
	r.RegisterModule("orbit", mod("dummy",
		num("H_tide", 0.0, "fixed tidal power density, W kg-1"),
		str("Phi_tide", "<0.3", "melt-fraction region in which tides are applied"),
	))
	r.RegisterModule("orbit", mod("lovepy",
		num("visc_thresh", 1e9, "minimum viscosity for tidal dissipation, Pa s"),
	))
}

func registerStruct(r *Registry) {
	r.RegisterSection(&SectionSpec{
		Name:     "struct",
		Implicit: true,
		Common: []*config.ParamSpec{
			req("mass_tot", cty.Number, "total planet mass, Earth masses"),
			req("corefrac", cty.Number, "core radius as a fraction of planet radius"),
			num("core_density", 10738.33, "iron core density, kg m-3"),
			num("core_heatcap", 880.0, "core specific heat capacity, J kg-1 K-1"),
		},
	})
}

func registerAtmosClim(r *Registry) {
	r.RegisterSection(&SectionSpec{
		Name: "atmos_clim",
		Common: []*config.ParamSpec{
			str("surf_state", "fixed", "surface energy balance scheme"),
			num("surface_d", 0.01, "conductive skin thickness, m"),
			num("albedo_pl", 0.0, "planetary bond albedo"),
			num("albedo_s", 0.0, "surface albedo"),
			boolean("rayleigh", false, "include Rayleigh scattering"),
			boolean("cloud_enabled", false, "include a simple cloud scheme"),
		},
	})
	r.RegisterModule("atmos_clim", mod("dummy",
		num("gamma", 0.01, "atmosphere opacity parameter in the grey model"),
	))
	r.RegisterModule("atmos_clim", mod("janus",
		num("p_top", 1e-5, "top of atmosphere pressure, bar"),
		str("spectral_group", "Frostflow", "spectral file group"),
		str("spectral_bands", "256", "number of spectral bands"),
		intg("num_levels", 90, "number of atmospheric levels"),
		str("tropopause", "none", "tropopause scheme"),
	))
	r.RegisterModule("atmos_clim", mod("agni",
		num("p_top", 1e-5, "top of atmosphere pressure, bar"),
		str("spectral_group", "Honeyside", "spectral file group"),
		str("spectral_bands", "256", "number of spectral bands"),
		intg("num_levels", 40, "number of atmospheric levels"),
		str("chemistry", "none", "equilibrium chemistry scheme"),
		boolean("solve_energy", false, "solve for energy-conserving profile"),
	))
}

func registerEscape(r *Registry) {
	r.RegisterSection(&SectionSpec{
		Name:    "escape",
		Default: "none",
		Common: []*config.ParamSpec{
			str("reservoir", "outgas", "volatile reservoir from which mass is removed"),
		},
	})
	r.RegisterModule("escape", mod("none"))
	r.RegisterModule("escape", mod("dummy",
		num("rate", 0.0, "fixed bulk escape rate, kg s-1"),
	))
	r.RegisterModule("escape", mod("zephyrus",
		num("efficiency", 0.1, "escape efficiency factor"),
		boolean("tidal", false, "include tidal contribution to the potential"),
		num("Pxuv", 5e-2, "pressure at which XUV is absorbed, bar"),
	))
}

func registerInterior(r *Registry) {
	r.RegisterSection(&SectionSpec{
		Name: "interior",
		Common: []*config.ParamSpec{
			num("grain_size", 0.1, "crystal settling grain size, m"),
			num("F_initial", 1e5, "initial heat flux guess, W m-2"),
			boolean("radiogenic_heat", false, "include radiogenic heating"),
			boolean("tidal_heat", false, "include tidal heating"),
		},
	})
	r.RegisterModule("interior", mod("dummy",
		num("ini_tmagma", 3500.0, "initial magma surface temperature, K"),
	))
	r.RegisterModule("interior", mod("spider",
		intg("num_levels", 190, "number of interior levels"),
		num("mixing_length", 2, "mixing length parameterization"),
		num("tolerance", 1e-10, "solver tolerance"),
		num("tsurf_atol", 10.0, "absolute tolerance on surface temperature, K"),
		num("ini_entropy", 2700.0, "initial specific surface entropy, J kg-1 K-1"),
		num("ini_dsdr", -4.698e-6, "initial entropy gradient, J kg-1 K-1 m-1"),
	))
	r.RegisterModule("interior", mod("aragog",
		intg("num_levels", 100, "number of interior levels"),
		num("ini_tmagma", 3200.0, "initial magma surface temperature, K"),
		boolean("conduction", true, "include conductive heat transport"),
		boolean("convection", true, "include convective heat transport"),
		boolean("gravitational_separation", false, "include gravitational separation"),
	))
}

func registerOutgas(r *Registry) {
	r.RegisterSection(&SectionSpec{
		Name: "outgas",
		Common: []*config.ParamSpec{
			num("fO2_shift_IW", 4.0, "oxygen fugacity relative to the iron-wustite buffer, log10 units"),
		},
	})
	r.RegisterModule("outgas", mod("calliope",
		boolean("include_H2O", true, "include H2O in the solved system"),
		boolean("include_CO2", true, "include CO2 in the solved system"),
		boolean("include_N2", true, "include N2 in the solved system"),
		boolean("include_S2", true, "include S2 in the solved system"),
		boolean("include_CO", true, "include CO in the solved system"),
		boolean("include_H2", true, "include H2 in the solved system"),
		boolean("include_CH4", false, "include CH4 in the solved system"),
	))
	r.RegisterModule("outgas", mod("atmodeller",
		boolean("some_parameter", false, "placeholder until the coupling lands"),
	))
}

func registerDelivery(r *Registry) {
	r.RegisterSection(&SectionSpec{
		Name:    "delivery",
		Default: "elements",
		Common: []*config.ParamSpec{
			str("initial", "elements", "accounting basis for the initial inventory"),
		},
	})
	r.RegisterModule("delivery", mod("elements",
		num("H_oceans", 6.0, "hydrogen inventory, Earth oceans equivalent"),
		num("CH_ratio", 1.0, "carbon-to-hydrogen mass ratio"),
		num("N_ppmw", 2.0, "nitrogen inventory, ppmw of mantle mass"),
		num("S_ppmw", 200.0, "sulfur inventory, ppmw of mantle mass"),
	))
	r.RegisterModule("delivery", mod("radionuclides",
		num("U_ppmw", 0.031, "uranium abundance, ppmw"),
		num("Th_ppmw", 0.124, "thorium abundance, ppmw"),
		num("K_ppmw", 310.0, "potassium abundance, ppmw"),
	))
}

func registerAtmosChem(r *Registry) {
	r.RegisterSection(&SectionSpec{
		Name:    "atmos_chem",
		Default: "none",
		Common: []*config.ParamSpec{
			str("when", "manually", "when kinetic chemistry runs during the loop"),
		},
	})
	r.RegisterModule("atmos_chem", mod("none"))
	r.RegisterModule("atmos_chem", mod("vulcan",
		num("clip_fl", 1e-20, "numerical floor applied to fluxes"),
		boolean("make_funs", true, "regenerate reaction functions"),
		str("ini_mix", "outgas", "source of the initial mixing ratios"),
	))
}

func registerObserve(r *Registry) {
	r.RegisterSection(&SectionSpec{
		Name:    "observe",
		Default: "none",
	})
	r.RegisterModule("observe", mod("none"))
	r.RegisterModule("observe", mod("synthesis",
		num("wl_min", 1.0, "shortest synthesized wavelength, um"),
		num("wl_max", 20.0, "longest synthesized wavelength, um"),
		intg("resolution", 1000, "spectral resolving power"),
	))
}
