// Package driver walks an ir.Module depth-first and feeds the encoder's
// event protocol. It owns everything the event grammar requires beyond
// raw emission: expression counting for block scopes, local index
// remapping into the VM's type-grouped layout, and index bounds checks.
package driver
