package kbuild

import "strconv"

// Dispatch accumulates the arms of an integer id to fragment lookup. Ids are
// dense and handed out in the order fragments are added.
type Dispatch struct {
	arms []string
}

// Add registers a fragment identifier and returns its dispatch id.
func (d *Dispatch) Add(fragment string) int {
	d.arms = append(d.arms, fragment)
	return len(d.arms) - 1
}

// Len returns the number of arms added so far.
func (d *Dispatch) Len() int { return len(d.arms) }

// Arms returns the fragment identifiers in id order.
func (d *Dispatch) Arms() []string { return append([]string(nil), d.arms...) }

// AppendBlock appends a let bound dispatch function named varname. Ids with no
// registered arm evaluate to the fallback expression. The appended block for
// two arms reads:
//
//	  let <varname> = @|id:i32| {
//	    match(id) {
//	      0 => <arm0>,
//	      1 => <arm1>,
//	    _ => <fallback>
//	    }
//	  };
func (d *Dispatch) AppendBlock(b []byte, varname, fallback string) []byte {
	b = append(b, Indent+"let "...)
	b = append(b, varname...)
	b = append(b, " = @|id:i32| {\n"...)
	b = append(b, Indent+Indent+"match(id) {\n"...)
	for i, arm := range d.arms {
		b = append(b, Indent+Indent+Indent...)
		b = strconv.AppendInt(b, int64(i), 10)
		b = append(b, " => "...)
		b = append(b, arm...)
		b = append(b, ",\n"...)
	}
	b = append(b, Indent+Indent+"_ => "...)
	b = append(b, fallback...)
	b = append(b, '\n')
	b = append(b, Indent+Indent+"}\n"...)
	b = append(b, Indent+"};\n"...)
	return b
}
