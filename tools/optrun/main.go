// optrun loads a JSON program fixture and a TOML pass configuration, runs the
// final-inline optimization over it and prints the mutation summary. With -dot
// it also dumps the pre-pass field dependency graph in Graphviz format.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	ethlog "github.com/ethereum/go-ethereum/log"

	"github.com/Briagont/redex/core/dex"
	"github.com/Briagont/redex/core/optimizer/finalinline"
)

type fixture struct {
	Classes   []fixtureClass    `json:"classes"`
	Retention *fixtureRetention `json:"retention"`
}

type fixtureClass struct {
	Name         string         `json:"name"`
	Super        string         `json:"super"`
	Flags        []string       `json:"flags"`
	StaticFields []fixtureField `json:"staticFields"`
	Methods      []fixtureMeth  `json:"methods"`
}

type fixtureField struct {
	Name  string   `json:"name"`
	Type  string   `json:"type"`
	Flags []string `json:"flags"`
	Value *int64   `json:"value"`
}

type fixtureMeth struct {
	Name  string        `json:"name"`
	Flags []string      `json:"flags"`
	Insns []fixtureInsn `json:"insns"`
}

type fixtureInsn struct {
	Op      string   `json:"op"`
	Dest    uint16   `json:"dest"`
	Src     uint16   `json:"src"`
	Srcs    []uint16 `json:"srcs"`
	Literal int64    `json:"literal"`
	Field   string   `json:"field"`
}

type fixtureRetention struct {
	KeepClasses []string `json:"keepClasses"`
	KeepFields  []string `json:"keepFields"`
}

var accessByName = map[string]dex.AccessFlags{
	"public":      dex.AccPublic,
	"private":     dex.AccPrivate,
	"protected":   dex.AccProtected,
	"static":      dex.AccStatic,
	"final":       dex.AccFinal,
	"synthetic":   dex.AccSynthetic,
	"constructor": dex.AccConstructor,
}

var constOps = map[string]dex.Opcode{
	"const/4":       dex.OpConst4,
	"const/16":      dex.OpConst16,
	"const":         dex.OpConst,
	"const/high16":  dex.OpConstHigh16,
	"const-wide/16": dex.OpConstWide16,
	"const-wide":    dex.OpConstWide,
}

var getOps = map[string]dex.Opcode{
	"sget":         dex.OpSget,
	"sget-wide":    dex.OpSgetWide,
	"sget-object":  dex.OpSgetObject,
	"sget-boolean": dex.OpSgetBoolean,
	"sget-byte":    dex.OpSgetByte,
	"sget-char":    dex.OpSgetChar,
	"sget-short":   dex.OpSgetShort,
}

var putOps = map[string]dex.Opcode{
	"sput":         dex.OpSput,
	"sput-wide":    dex.OpSputWide,
	"sput-object":  dex.OpSputObject,
	"sput-boolean": dex.OpSputBoolean,
	"sput-byte":    dex.OpSputByte,
	"sput-char":    dex.OpSputChar,
	"sput-short":   dex.OpSputShort,
}

func parseFlags(names []string) (dex.AccessFlags, error) {
	var flags dex.AccessFlags
	for _, name := range names {
		bit, ok := accessByName[name]
		if !ok {
			return 0, fmt.Errorf("unknown access flag %q", name)
		}
		flags |= bit
	}
	return flags, nil
}

// parseFieldRef parses "Lpkg/Cls;->NAME:TYPE".
func parseFieldRef(s string) (dex.FieldRef, error) {
	classAndRest := strings.SplitN(s, "->", 2)
	if len(classAndRest) != 2 {
		return dex.FieldRef{}, fmt.Errorf("malformed field reference %q", s)
	}
	nameAndType := strings.SplitN(classAndRest[1], ":", 2)
	if len(nameAndType) != 2 {
		return dex.FieldRef{}, fmt.Errorf("malformed field reference %q", s)
	}
	return dex.FieldRef{
		Class: classAndRest[0],
		Name:  nameAndType[0],
		Type:  dex.Type(nameAndType[1]),
	}, nil
}

func valueKindForType(t dex.Type) (dex.ValueKind, error) {
	switch t {
	case dex.TypeBoolean:
		return dex.ValueBoolean, nil
	case dex.TypeByte:
		return dex.ValueByte, nil
	case dex.TypeShort:
		return dex.ValueShort, nil
	case dex.TypeChar:
		return dex.ValueChar, nil
	case dex.TypeInt:
		return dex.ValueInt, nil
	case dex.TypeLong:
		return dex.ValueLong, nil
	case dex.TypeFloat:
		return dex.ValueFloat, nil
	case dex.TypeDouble:
		return dex.ValueDouble, nil
	}
	return 0, fmt.Errorf("type %q cannot carry a fixture value", string(t))
}

func buildInsn(fi fixtureInsn) (*dex.Instruction, error) {
	if op, ok := constOps[fi.Op]; ok {
		return dex.NewConst(op, dex.RegID(fi.Dest), fi.Literal), nil
	}
	if op, ok := getOps[fi.Op]; ok {
		ref, err := parseFieldRef(fi.Field)
		if err != nil {
			return nil, err
		}
		return dex.NewStaticGet(op, dex.RegID(fi.Dest), ref), nil
	}
	if op, ok := putOps[fi.Op]; ok {
		ref, err := parseFieldRef(fi.Field)
		if err != nil {
			return nil, err
		}
		return dex.NewStaticPut(op, dex.RegID(fi.Src), ref), nil
	}
	switch fi.Op {
	case "return-void":
		return dex.NewReturnVoid(), nil
	case "move":
		return dex.NewMove(dex.RegID(fi.Dest), dex.RegID(fi.Src)), nil
	case "add-int":
		if len(fi.Srcs) != 2 {
			return nil, fmt.Errorf("add-int needs two source registers")
		}
		return dex.NewAddInt(dex.RegID(fi.Dest), dex.RegID(fi.Srcs[0]), dex.RegID(fi.Srcs[1])), nil
	case "invoke-static":
		args := make([]dex.RegID, len(fi.Srcs))
		for i, s := range fi.Srcs {
			args[i] = dex.RegID(s)
		}
		return dex.NewInvokeStatic(args...), nil
	}
	return nil, fmt.Errorf("unknown opcode %q", fi.Op)
}

func buildProgram(fx *fixture) (*dex.Program, error) {
	program := dex.NewProgram()
	for _, fc := range fx.Classes {
		flags, err := parseFlags(fc.Flags)
		if err != nil {
			return nil, fmt.Errorf("class %s: %w", fc.Name, err)
		}
		super := fc.Super
		if super == "" && fc.Name != "Ljava/lang/Object;" {
			super = "Ljava/lang/Object;"
		}
		cls := dex.NewClass(fc.Name, super, flags)

		for _, ff := range fc.StaticFields {
			fflags, err := parseFlags(ff.Flags)
			if err != nil {
				return nil, fmt.Errorf("field %s.%s: %w", fc.Name, ff.Name, err)
			}
			field := dex.NewField(dex.FieldRef{Class: fc.Name, Name: ff.Name, Type: dex.Type(ff.Type)}, fflags)
			if ff.Value != nil {
				kind, err := valueKindForType(field.Type())
				if err != nil {
					return nil, fmt.Errorf("field %s.%s: %w", fc.Name, ff.Name, err)
				}
				field.SetStaticValue(dex.NewEncodedValue(kind, uint64(*ff.Value)))
			}
			cls.AddStaticField(field)
		}

		for _, fm := range fc.Methods {
			mflags, err := parseFlags(fm.Flags)
			if err != nil {
				return nil, fmt.Errorf("method %s.%s: %w", fc.Name, fm.Name, err)
			}
			insns := make([]*dex.Instruction, 0, len(fm.Insns))
			for i, fi := range fm.Insns {
				insn, err := buildInsn(fi)
				if err != nil {
					return nil, fmt.Errorf("method %s.%s insn %d: %w", fc.Name, fm.Name, i, err)
				}
				insns = append(insns, insn)
			}
			cls.AddMethod(dex.NewMethod(fc.Name, fm.Name, mflags, dex.NewCode(insns...)))
		}
		program.AddClass(cls)
	}
	return program, nil
}

func buildRetention(fx *fixture) (dex.Retention, error) {
	if fx.Retention == nil {
		// No keep rules in the fixture: the pass will decline to run.
		return &dex.RetentionRules{}, nil
	}
	rules := dex.NewRetentionRules()
	for _, name := range fx.Retention.KeepClasses {
		rules.KeepClass(name)
	}
	for _, refStr := range fx.Retention.KeepFields {
		ref, err := parseFieldRef(refStr)
		if err != nil {
			return nil, err
		}
		rules.KeepField(ref)
	}
	return rules, nil
}

func main() {
	programPath := flag.String("program", "", "path to JSON program fixture")
	configPath := flag.String("config", "", "path to TOML pass config (optional)")
	dotPath := flag.String("dot", "", "write pre-pass field dependency graph in DOT format")
	verbosity := flag.Int("verbosity", 3, "log verbosity (0=crit .. 5=trace)")
	flag.Parse()

	h := ethlog.NewTerminalHandlerWithLevel(os.Stderr, ethlog.FromLegacyLevel(*verbosity), false)
	ethlog.SetDefault(ethlog.NewLogger(h))

	if *programPath == "" {
		fmt.Fprintln(os.Stderr, "usage: optrun -program fixture.json [-config pass.toml] [-dot deps.dot]")
		os.Exit(2)
	}

	data, err := os.ReadFile(*programPath)
	if err != nil {
		fatalf("read program: %v", err)
	}
	var fx fixture
	if err := json.Unmarshal(data, &fx); err != nil {
		fatalf("parse program: %v", err)
	}

	program, err := buildProgram(&fx)
	if err != nil {
		fatalf("build program: %v", err)
	}
	retention, err := buildRetention(&fx)
	if err != nil {
		fatalf("build retention rules: %v", err)
	}

	cfg := finalinline.DefaultConfig()
	if *configPath != "" {
		cfg, err = finalinline.LoadConfig(*configPath)
		if err != nil {
			fatalf("load config: %v", err)
		}
	}

	if *dotPath != "" {
		dot := finalinline.DepGraphDot(program)
		if err := os.WriteFile(*dotPath, []byte(dot), 0644); err != nil {
			fatalf("write dot: %v", err)
		}
		ethlog.Info("wrote dependency graph", "path", *dotPath)
	}

	sum, err := finalinline.NewPass(program, retention, cfg).Run()
	if err != nil {
		fatalf("pass failed: %v", err)
	}

	fmt.Printf("clinits replaced:       %d\n", sum.ClinitsReplaced)
	fmt.Printf("static finals resolved: %d\n", sum.StaticFinalsResolved)
	fmt.Printf("unhandled inline reads: %d\n", sum.UnhandledInline)
}

func fatalf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
