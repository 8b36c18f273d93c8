package ffi

// HostArch is the architecture this binary was built for.
const HostArch = ArchARM64
