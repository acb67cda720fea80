package utils

import (
	"fmt"
	"strings"

	"github.com/fatih/color"

	"github.com/ruinedyourlife/tfm-unpacker/swf"
)

// FormatDoABC summarizes a DoABC tag and the sizes of its ABC tables.
func FormatDoABC(tag *swf.DoABC) string {
	var b strings.Builder
	lazy := tag.Flags&1 != 0
	fmt.Fprintf(&b, "\t[%s] %s lazy:%v\n",
		color.BlueString("DoABC"), color.GreenString("%q", tag.Name), lazy)

	f := tag.File
	if f == nil {
		return b.String()
	}
	cp := f.ConstantPool
	fmt.Fprintf(&b, "\t[%s] version %d.%d\n", color.BlueString("AbcFile"), f.MajorVersion, f.MinorVersion)
	rows := []struct {
		indent string
		name   string
		count  int
	}{
		{"\t\t ", "methods", len(f.Methods)},
		{"\t\t ", "classes", len(f.Classes)},
		{"\t\t ", "scripts", len(f.Scripts)},
		{"\t\t ", "bodies", len(f.Bodies)},
		{"\t\t\t ", "integers", len(cp.Integers)},
		{"\t\t\t ", "uintegers", len(cp.Uintegers)},
		{"\t\t\t ", "doubles", len(cp.Doubles)},
		{"\t\t\t ", "strings", len(cp.Strings)},
		{"\t\t\t ", "namespaces", len(cp.Namespaces)},
		{"\t\t\t ", "ns_sets", len(cp.NsSets)},
		{"\t\t\t ", "multinames", len(cp.Multinames)},
	}
	for i, row := range rows {
		if i == 4 {
			b.WriteString("\t\t cpool:\n")
		}
		fmt.Fprintf(&b, "%s%s: %s\n", row.indent, row.name, color.YellowString("%d", row.count))
	}
	return strings.TrimSuffix(b.String(), "\n")
}
