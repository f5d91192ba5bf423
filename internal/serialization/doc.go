// Package serialization stores trained network weights in the .xnn
// checkpoint format.
//
//	Format Structure:
//	  [64 bytes: fixed header]
//	    0x00 magic "XNNC"
//	    0x04 version (uint32 LE)
//	    0x08 flags (uint32 LE)
//	    0x0C reserved
//	    0x10 header size (uint64 LE)
//	    0x18 data size (uint64 LE)
//	    0x20 SHA-256 of the header JSON and the data section
//	  [Header: JSON metadata]
//	  [padding to a 64-byte boundary]
//	  [Tensor data: float64 little-endian, row-major]
//
// The JSON header describes every layer of the network (kind, widths,
// activation, hyperparameters) and the location of every tensor in the data
// section, so a checkpoint can rebuild the network without any code-side
// description of the architecture.
//
// Example usage:
//
//	header := serialization.Header{ModelType: "Network", Layers: layers}
//	if err := serialization.WriteFile("model.xnn", header, tensors); err != nil {
//	    log.Fatal(err)
//	}
//
//	header, tensors, err := serialization.ReadFile("model.xnn")
package serialization
