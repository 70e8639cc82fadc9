//go:build windows

package webgpu

import "fmt"

// workgroupSize is the number of invocations per workgroup for elementwise kernels.
const workgroupSize = 256

// Elementwise kernels share one layout: lhs and rhs in, out at binding 2, element
// count in the uniform.
const binaryTemplate = `
@group(0) @binding(0) var<storage, read> lhs: array<f32>;
@group(0) @binding(1) var<storage, read> rhs: array<f32>;
@group(0) @binding(2) var<storage, read_write> out: array<f32>;

struct Dims {
    len: u32,
}
@group(0) @binding(3) var<uniform> dims: Dims;

@compute @workgroup_size(%d)
fn main(@builtin(global_invocation_id) id: vec3<u32>) {
    let i = id.x;
    if (i < dims.len) {
        out[i] = lhs[i] %s rhs[i];
    }
}
`

// Scalar kernels read the scalar from the second uniform word.
const scalarTemplate = `
@group(0) @binding(0) var<storage, read> src: array<f32>;
@group(0) @binding(1) var<storage, read_write> out: array<f32>;

struct Dims {
    len: u32,
    s: f32,
}
@group(0) @binding(2) var<uniform> dims: Dims;

@compute @workgroup_size(%d)
fn main(@builtin(global_invocation_id) id: vec3<u32>) {
    let i = id.x;
    if (i < dims.len) {
        out[i] = src[i] %s dims.s;
    }
}
`

var (
	addShader       = fmt.Sprintf(binaryTemplate, workgroupSize, "+")
	subShader       = fmt.Sprintf(binaryTemplate, workgroupSize, "-")
	scalarMulShader = fmt.Sprintf(scalarTemplate, workgroupSize, "*")
	scalarDivShader = fmt.Sprintf(scalarTemplate, workgroupSize, "/")
)

// matmulShader computes out = lhs x rhs for lhs [m, k] and rhs [k, n], one
// invocation per output element on a 16x16 grid.
const matmulShader = `
@group(0) @binding(0) var<storage, read> lhs: array<f32>;
@group(0) @binding(1) var<storage, read> rhs: array<f32>;
@group(0) @binding(2) var<storage, read_write> out: array<f32>;

struct Dims {
    m: u32,
    k: u32,
    n: u32,
}
@group(0) @binding(3) var<uniform> dims: Dims;

@compute @workgroup_size(16, 16)
fn main(@builtin(global_invocation_id) id: vec3<u32>) {
    let r = id.y;
    let c = id.x;
    if (r >= dims.m || c >= dims.n) {
        return;
    }

    var acc: f32 = 0.0;
    for (var p: u32 = 0u; p < dims.k; p = p + 1u) {
        acc = acc + lhs[r * dims.k + p] * rhs[p * dims.n + c];
    }
    out[r * dims.n + c] = acc;
}
`

// transposeShader writes the [cols, rows] transpose of a [rows, cols] source.
const transposeShader = `
@group(0) @binding(0) var<storage, read> src: array<f32>;
@group(0) @binding(1) var<storage, read_write> out: array<f32>;

struct Dims {
    rows: u32,
    cols: u32,
}
@group(0) @binding(2) var<uniform> dims: Dims;

@compute @workgroup_size(16, 16)
fn main(@builtin(global_invocation_id) id: vec3<u32>) {
    let r = id.y;
    let c = id.x;
    if (r >= dims.rows || c >= dims.cols) {
        return;
    }
    out[c * dims.rows + r] = src[r * dims.cols + c];
}
`
