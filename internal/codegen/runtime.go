package codegen

// runtimePrototypes is §4.7 step 5 / §6's runtime surface: the helpers
// the emitted C calls into but that live in the separately-compiled,
// out-of-scope virex_runtime.o.
var runtimePrototypes = []string{
	"void *virex_alloc(size_t n);",
	"void virex_free(void *p);",
	"void virex_copy(void *dst, const void *src, size_t n);",
	"void virex_set(void *dst, int val, size_t n);",
	"void virex_print_i32(int32_t v);",
	"void virex_print_i64(int64_t v);",
	"void virex_print_bool(int v);",
	"void virex_print_str(struct Slice_uint8_t s);",
	"void virex_print_f64(double v);",
	"void virex_print_slice_uint8_t(struct Slice_uint8_t s);",
	"void virex_exit(int code);",
	"void virex_init_args(int argc, char **argv);",
	"int virex_get_argc(void);",
	"char **virex_get_argv(void);",
	"void virex_slice_bounds_check(int64_t index, int64_t len);",
	"void virex_slice_range_check(int64_t lo, int64_t hi, int64_t len);",
	"double virex_math_sqrt(double v);",
	"double virex_math_pow(double base, double exp);",
	"struct Slice_uint8_t virex_slice_make(void *data, int64_t lo, int64_t hi);",
}

// printSuffixes enumerates the `print_<suffix>`/`println_<suffix>`
// overload family §4.5's call-site dispatch mangles free print/println
// calls onto, one pair of prototypes per primitive suffix.
var printSuffixes = []struct {
	suffix, cType string
}{
	{"i8", "int8_t"}, {"i16", "int16_t"}, {"i32", "int32_t"}, {"i64", "int64_t"},
	{"u8", "uint8_t"}, {"u16", "uint16_t"}, {"u32", "uint32_t"}, {"u64", "uint64_t"},
	{"f32", "float"}, {"f64", "double"}, {"bool", "int"},
}

func printOverloadPrototypes() []string {
	out := make([]string, 0, len(printSuffixes)*2+2)
	for _, p := range printSuffixes {
		out = append(out, "void print_"+p.suffix+"("+p.cType+" v);")
		out = append(out, "void println_"+p.suffix+"("+p.cType+" v);")
	}
	out = append(out, "void print_str(struct Slice_uint8_t v);", "void println_str(struct Slice_uint8_t v);")
	return out
}

// resultCtorPrototypes are the generic result constructors §4.5 routes
// `result::ok`/`result::err` call sites through.
var resultCtorPrototypes = []string{
	"struct Result virex_result_ok(long val);",
	"struct Result virex_result_err(long val);",
}

// externWhitelist is the set of standard C names already declared by
// §4.7 step 1's fixed header set — an extern declaration for one of
// these must never be re-emitted, or gcc rejects the conflicting
// prototype.
var externWhitelist = map[string]bool{
	"printf": true, "fprintf": true, "sprintf": true, "snprintf": true,
	"malloc": true, "calloc": true, "realloc": true, "free": true,
	"memcpy": true, "memmove": true, "memset": true, "memcmp": true,
	"strlen": true, "strcmp": true, "strncmp": true, "strcpy": true, "strncpy": true,
	"strcat": true, "strncat": true, "strchr": true, "strstr": true, "strdup": true,
	"puts": true, "putchar": true, "getchar": true, "fgets": true,
	"fopen": true, "fclose": true, "fread": true, "fwrite": true, "fflush": true,
	"exit": true, "abort": true, "atoi": true, "atol": true, "atof": true,
	"rand": true, "srand": true, "qsort": true, "bsearch": true,
}
