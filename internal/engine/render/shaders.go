package render

// Embedded GLSL for every pipeline stage. All programs target the 4.1 core
// profile. Array sizes must match the capacities in the lights and shadow
// packages.

const screenVertexSrc = `
#version 410 core
layout (location = 0) in vec2 aPos;
layout (location = 1) in vec2 aUV;
out vec2 vUV;
void main() {
    vUV = aUV;
    gl_Position = vec4(aPos, 0.0, 1.0);
}
`

const geometryVertexSrc = `
#version 410 core
layout (location = 0) in vec3 aPos;
layout (location = 1) in vec3 aNormal;
layout (location = 2) in vec2 aUV;

uniform mat4 uModel;
uniform mat4 uView;
uniform mat4 uProjection;
uniform vec4 uInset;

out vec3 vWorldPos;
out vec3 vNormal;
out vec2 vUV;

void main() {
    vec4 world = uModel * vec4(aPos, 1.0);
    vWorldPos = world.xyz;
    vNormal = normalize(mat3(uModel) * aNormal);
    vUV = uInset.xy + aUV * uInset.zw;
    gl_Position = uProjection * uView * world;
}
`

const geometryFragmentSrc = `
#version 410 core
in vec3 vWorldPos;
in vec3 vNormal;
in vec2 vUV;

uniform sampler2D uDiffuse;
uniform vec4 uTint;
uniform float uSpecular;
uniform float uEmissive;

layout (location = 0) out vec4 gPosition;
layout (location = 1) out vec4 gAlbedo;
layout (location = 2) out vec4 gMaterial;
layout (location = 3) out vec4 gNormal;

void main() {
    vec4 albedo = texture(uDiffuse, vUV) * uTint;
    if (albedo.a < 0.01) discard;
    gPosition = vec4(vWorldPos, 1.0);
    gAlbedo = albedo;
    gMaterial = vec4(uSpecular, uEmissive, 0.0, 1.0);
    gNormal = vec4(normalize(vNormal), 1.0);
}
`

const terrainVertexSrc = `
#version 410 core
layout (location = 0) in vec3 aPos;
layout (location = 1) in vec3 aNormal;
layout (location = 2) in vec2 aUV;
layout (location = 3) in vec4 aBlend;
layout (location = 4) in vec4 aTint;

uniform mat4 uView;
uniform mat4 uProjection;

out vec3 vWorldPos;
out vec3 vNormal;
out vec2 vUV;
out vec4 vBlend;
out vec4 vTint;

void main() {
    vWorldPos = aPos;
    vNormal = aNormal;
    vUV = aUV;
    vBlend = aBlend;
    vTint = aTint;
    gl_Position = uProjection * uView * vec4(aPos, 1.0);
}
`

const terrainFragmentSrc = `
#version 410 core
in vec3 vWorldPos;
in vec3 vNormal;
in vec2 vUV;
in vec4 vBlend;
in vec4 vTint;

uniform sampler2D uLayers[4];

layout (location = 0) out vec4 gPosition;
layout (location = 1) out vec4 gAlbedo;
layout (location = 2) out vec4 gMaterial;
layout (location = 3) out vec4 gNormal;

void main() {
    vec3 color = vec3(0.0);
    float total = vBlend.x + vBlend.y + vBlend.z + vBlend.w;
    if (total <= 0.0) {
        color = texture(uLayers[0], vUV).rgb;
    } else {
        color += texture(uLayers[0], vUV).rgb * (vBlend.x / total);
        color += texture(uLayers[1], vUV).rgb * (vBlend.y / total);
        color += texture(uLayers[2], vUV).rgb * (vBlend.z / total);
        color += texture(uLayers[3], vUV).rgb * (vBlend.w / total);
    }
    gPosition = vec4(vWorldPos, 1.0);
    gAlbedo = vec4(color * vTint.rgb, 1.0);
    gMaterial = vec4(0.0, 0.0, 0.0, 1.0);
    gNormal = vec4(normalize(vNormal), 1.0);
}
`

const shadowCastVertexSrc = `
#version 410 core
layout (location = 0) in vec3 aPos;
layout (location = 1) in vec3 aNormal;
layout (location = 2) in vec2 aUV;

uniform mat4 uModel;
uniform mat4 uLightSpace;

out vec3 vWorldPos;

void main() {
    vec4 world = uModel * vec4(aPos, 1.0);
    vWorldPos = world.xyz;
    gl_Position = uLightSpace * world;
}
`

const shadowCastFragmentSrc = `
#version 410 core
in vec3 vWorldPos;
uniform vec3 uLightPos;
out vec4 fragColor;
void main() {
    fragColor = vec4(length(vWorldPos - uLightPos), 0.0, 0.0, 1.0);
}
`

// Light-map coverage: writes the index of the nearest baked map whose bounds
// contain the pixel's world position, or -1.
const coverageFragmentSrc = `
#version 410 core
in vec2 vUV;

uniform sampler2D uPosition;
uniform int uMapCount;
uniform vec3 uMapOrigins[8];
uniform vec3 uMapBoundsMin[8];
uniform vec3 uMapBoundsMax[8];

out vec4 fragColor;

void main() {
    vec3 world = texture(uPosition, vUV).xyz;
    float best = -1.0;
    float bestDist = 1e30;
    for (int i = 0; i < uMapCount; i++) {
        if (any(lessThan(world, uMapBoundsMin[i])) ||
            any(greaterThan(world, uMapBoundsMax[i]))) continue;
        float d = dot(world - uMapOrigins[i], world - uMapOrigins[i]);
        if (d < bestDist) {
            bestDist = d;
            best = float(i);
        }
    }
    fragColor = vec4(best, 0.0, 0.0, 1.0);
}
`

// Screen-space ambient term from the covering map's irradiance capture, with
// the sky box as fallback.
const irradianceFragmentSrc = `
#version 410 core
in vec2 vUV;

uniform sampler2D uNormal;
uniform sampler2D uCoverage;
uniform samplerCube uSky;
uniform samplerCube uMapIrradiance[8];
uniform int uMapCount;
uniform int uHasSky;
uniform vec3 uAmbient;
uniform float uSkyIntensity;

out vec4 fragColor;

void main() {
    vec3 n = texture(uNormal, vUV).xyz;
    int idx = int(texture(uCoverage, vUV).r + 0.5);
    vec3 ambient = uAmbient;
    if (uHasSky != 0) {
        ambient += texture(uSky, n).rgb * uSkyIntensity * 0.25;
    }
    for (int i = 0; i < uMapCount; i++) {
        if (i == idx) ambient = texture(uMapIrradiance[i], n).rgb;
    }
    fragColor = vec4(ambient, 1.0);
}
`

const envFilterFragmentSrc = `
#version 410 core
in vec2 vUV;

uniform sampler2D uPosition;
uniform sampler2D uNormal;
uniform sampler2D uCoverage;
uniform samplerCube uSky;
uniform samplerCube uMapEnvironment[8];
uniform int uMapCount;
uniform int uHasSky;
uniform vec3 uEye;
uniform float uSkyIntensity;

out vec4 fragColor;

void main() {
    vec3 world = texture(uPosition, vUV).xyz;
    vec3 n = texture(uNormal, vUV).xyz;
    vec3 r = reflect(normalize(world - uEye), n);
    int idx = int(texture(uCoverage, vUV).r + 0.5);
    vec3 env = vec3(0.0);
    if (uHasSky != 0) {
        env = texture(uSky, r).rgb * uSkyIntensity;
    }
    for (int i = 0; i < uMapCount; i++) {
        if (i == idx) env = texture(uMapEnvironment[i], r).rgb;
    }
    fragColor = vec4(env, 1.0);
}
`

const ssaoFragmentSrc = `
#version 410 core
in vec2 vUV;

uniform sampler2D uPosition;
uniform sampler2D uNormal;
uniform mat4 uView;
uniform mat4 uProjection;
uniform vec3 uKernel[16];
uniform float uRadius;
uniform float uBias;

out vec4 fragColor;

float rand(vec2 co) {
    return fract(sin(dot(co, vec2(12.9898, 78.233))) * 43758.5453);
}

void main() {
    vec3 world = texture(uPosition, vUV).xyz;
    vec3 normal = texture(uNormal, vUV).xyz;
    vec3 viewPos = (uView * vec4(world, 1.0)).xyz;
    vec3 viewNormal = normalize(mat3(uView) * normal);

    float angle = rand(vUV) * 6.2831853;
    vec3 tangent = normalize(vec3(cos(angle), sin(angle), 0.0)
        - viewNormal * dot(vec3(cos(angle), sin(angle), 0.0), viewNormal));
    mat3 tbn = mat3(tangent, cross(viewNormal, tangent), viewNormal);

    float occlusion = 0.0;
    for (int i = 0; i < 16; i++) {
        vec3 sampleView = viewPos + tbn * uKernel[i] * uRadius;
        vec4 clip = uProjection * vec4(sampleView, 1.0);
        vec2 uv = clip.xy / clip.w * 0.5 + 0.5;
        if (uv.x < 0.0 || uv.x > 1.0 || uv.y < 0.0 || uv.y > 1.0) continue;
        vec3 sampleWorld = texture(uPosition, uv).xyz;
        float sampleDepth = (uView * vec4(sampleWorld, 1.0)).z;
        float range = smoothstep(0.0, 1.0, uRadius / abs(viewPos.z - sampleDepth));
        occlusion += (sampleDepth >= sampleView.z + uBias ? 1.0 : 0.0) * range;
    }
    fragColor = vec4(1.0 - occlusion / 16.0, 0.0, 0.0, 1.0);
}
`

// One-dimensional box filter over the raw occlusion term.
const ssaoBlurFragmentSrc = `
#version 410 core
in vec2 vUV;
uniform sampler2D uInput;
uniform vec2 uDirection;
out vec4 fragColor;
void main() {
    vec2 texel = 1.0 / vec2(textureSize(uInput, 0));
    float sum = 0.0;
    for (int i = -2; i <= 2; i++) {
        sum += texture(uInput, vUV + uDirection * texel * float(i)).r;
    }
    fragColor = vec4(sum / 5.0, 0.0, 0.0, 1.0);
}
`

const compositeFragmentSrc = `
#version 410 core
in vec2 vUV;

uniform sampler2D uPosition;
uniform sampler2D uAlbedo;
uniform sampler2D uMaterial;
uniform sampler2D uNormal;
uniform sampler2D uIrradiance;
uniform sampler2D uEnvFilter;
uniform sampler2D uSSAO;
uniform int uSSAOEnabled;
uniform float uAOStrength;

uniform vec3 uEye;
uniform int uLightCount;
uniform vec3 uLightPositions[32];
uniform vec3 uLightDirections[32];
uniform vec3 uLightColors[32];
uniform int uLightKinds[32];
uniform float uLightIntensities[32];
uniform float uLightRanges[32];
uniform float uLightCones[32];
uniform int uLightShadowSlots[32];

uniform sampler2D uShadowMaps[8];
uniform mat4 uShadowMatrices[8];
uniform int uShadowsEnabled;

out vec4 fragColor;

float shadowFactor(int slot, vec3 world, vec3 lightPos) {
    if (slot < 0 || uShadowsEnabled == 0) return 1.0;
    vec4 ls = uShadowMatrices[slot] * vec4(world, 1.0);
    vec3 proj = ls.xyz / ls.w * 0.5 + 0.5;
    if (proj.x < 0.0 || proj.x > 1.0 || proj.y < 0.0 || proj.y > 1.0) return 1.0;
    float stored = 1e9;
    for (int i = 0; i < 8; i++) {
        if (i == slot) stored = texture(uShadowMaps[i], proj.xy).r;
    }
    float dist = length(world - lightPos);
    return dist - 0.15 > stored ? 0.25 : 1.0;
}

void main() {
    vec3 world = texture(uPosition, vUV).xyz;
    vec4 albedo = texture(uAlbedo, vUV);
    vec4 material = texture(uMaterial, vUV);
    vec3 n = texture(uNormal, vUV).xyz;
    vec3 ambient = texture(uIrradiance, vUV).rgb;
    vec3 env = texture(uEnvFilter, vUV).rgb;
    float ao = uSSAOEnabled != 0 ? mix(1.0, texture(uSSAO, vUV).r, uAOStrength) : 1.0;

    vec3 viewDir = normalize(uEye - world);
    vec3 lit = albedo.rgb * ambient * ao;

    for (int i = 0; i < uLightCount; i++) {
        vec3 toLight;
        float atten = 1.0;
        if (uLightKinds[i] == 1) { // directional
            toLight = -uLightDirections[i];
        } else {
            toLight = uLightPositions[i] - world;
            float dist = length(toLight);
            if (dist > uLightRanges[i]) continue;
            toLight /= max(dist, 1e-4);
            atten = 1.0 - dist / uLightRanges[i];
            if (uLightKinds[i] == 2) { // spot
                float cosCone = cos(radians(uLightCones[i]) * 0.5);
                float cosAngle = dot(-toLight, uLightDirections[i]);
                if (cosAngle < cosCone) continue;
                atten *= (cosAngle - cosCone) / max(1.0 - cosCone, 1e-4);
            }
        }
        float diff = max(dot(n, toLight), 0.0);
        vec3 halfway = normalize(toLight + viewDir);
        float spec = pow(max(dot(n, halfway), 0.0), 32.0) * material.r;
        float shade = shadowFactor(uLightShadowSlots[i], world, uLightPositions[i]);
        lit += (albedo.rgb * diff + vec3(spec)) *
            uLightColors[i] * uLightIntensities[i] * atten * shade;
    }

    lit += env * material.r;
    lit += albedo.rgb * material.g;
    fragColor = vec4(lit, 1.0);
}
`

const skyBoxVertexSrc = `
#version 410 core
layout (location = 0) in vec3 aPos;
uniform mat4 uView;
uniform mat4 uProjection;
out vec3 vDir;
void main() {
    vDir = aPos;
    vec4 pos = uProjection * mat4(mat3(uView)) * vec4(aPos, 1.0);
    gl_Position = pos.xyww;
}
`

const skyBoxFragmentSrc = `
#version 410 core
in vec3 vDir;
uniform samplerCube uSky;
uniform float uIntensity;
out vec4 fragColor;
void main() {
    fragColor = vec4(texture(uSky, vDir).rgb * uIntensity, 1.0);
}
`

const forwardVertexSrc = `
#version 410 core
layout (location = 0) in vec3 aPos;
layout (location = 1) in vec3 aNormal;
layout (location = 2) in vec2 aUV;

uniform mat4 uModel;
uniform mat4 uView;
uniform mat4 uProjection;
uniform vec4 uInset;

out vec3 vWorldPos;
out vec3 vNormal;
out vec2 vUV;

void main() {
    vec4 world = uModel * vec4(aPos, 1.0);
    vWorldPos = world.xyz;
    vNormal = normalize(mat3(uModel) * aNormal);
    vUV = uInset.xy + aUV * uInset.zw;
    gl_Position = uProjection * uView * world;
}
`

const forwardFragmentSrc = `
#version 410 core
in vec3 vWorldPos;
in vec3 vNormal;
in vec2 vUV;

uniform sampler2D uDiffuse;
uniform samplerCube uIrradianceMap;
uniform int uHasIrradiance;
uniform vec4 uTint;
uniform vec3 uAmbient;
uniform vec3 uEye;

uniform int uLightCount;
uniform vec3 uLightPositions[8];
uniform vec3 uLightDirections[8];
uniform vec3 uLightColors[8];
uniform int uLightKinds[8];
uniform float uLightIntensities[8];
uniform float uLightRanges[8];

out vec4 fragColor;

void main() {
    vec4 albedo = texture(uDiffuse, vUV) * uTint;
    if (albedo.a < 0.004) discard;
    vec3 n = normalize(vNormal);
    vec3 ambient = uAmbient;
    if (uHasIrradiance == 1) {
        ambient += texture(uIrradianceMap, n).rgb;
    }
    vec3 lit = albedo.rgb * ambient;
    for (int i = 0; i < uLightCount; i++) {
        vec3 toLight;
        float atten = 1.0;
        if (uLightKinds[i] == 1) {
            toLight = -uLightDirections[i];
        } else {
            toLight = uLightPositions[i] - vWorldPos;
            float dist = length(toLight);
            if (dist > uLightRanges[i]) continue;
            toLight /= max(dist, 1e-4);
            atten = 1.0 - dist / uLightRanges[i];
        }
        lit += albedo.rgb * max(dot(n, toLight), 0.0) *
            uLightColors[i] * uLightIntensities[i] * atten;
    }
    fragColor = vec4(lit, albedo.a);
}
`

const fxaaFragmentSrc = `
#version 410 core
in vec2 vUV;
uniform sampler2D uInput;
out vec4 fragColor;

void main() {
    vec2 texel = 1.0 / vec2(textureSize(uInput, 0));
    vec3 rgbNW = texture(uInput, vUV + vec2(-1.0, -1.0) * texel).rgb;
    vec3 rgbNE = texture(uInput, vUV + vec2(1.0, -1.0) * texel).rgb;
    vec3 rgbSW = texture(uInput, vUV + vec2(-1.0, 1.0) * texel).rgb;
    vec3 rgbSE = texture(uInput, vUV + vec2(1.0, 1.0) * texel).rgb;
    vec3 rgbM = texture(uInput, vUV).rgb;

    vec3 luma = vec3(0.299, 0.587, 0.114);
    float lumaNW = dot(rgbNW, luma);
    float lumaNE = dot(rgbNE, luma);
    float lumaSW = dot(rgbSW, luma);
    float lumaSE = dot(rgbSE, luma);
    float lumaM = dot(rgbM, luma);
    float lumaMin = min(lumaM, min(min(lumaNW, lumaNE), min(lumaSW, lumaSE)));
    float lumaMax = max(lumaM, max(max(lumaNW, lumaNE), max(lumaSW, lumaSE)));

    vec2 dir = vec2(
        -((lumaNW + lumaNE) - (lumaSW + lumaSE)),
        (lumaNW + lumaSW) - (lumaNE + lumaSE));
    float dirReduce = max((lumaNW + lumaNE + lumaSW + lumaSE) * 0.03125, 1.0 / 128.0);
    float rcpDirMin = 1.0 / (min(abs(dir.x), abs(dir.y)) + dirReduce);
    dir = clamp(dir * rcpDirMin, vec2(-8.0), vec2(8.0)) * texel;

    vec3 rgbA = 0.5 * (
        texture(uInput, vUV + dir * (1.0 / 3.0 - 0.5)).rgb +
        texture(uInput, vUV + dir * (2.0 / 3.0 - 0.5)).rgb);
    vec3 rgbB = rgbA * 0.5 + 0.25 * (
        texture(uInput, vUV + dir * -0.5).rgb +
        texture(uInput, vUV + dir * 0.5).rgb);
    float lumaB = dot(rgbB, luma);
    fragColor = vec4(lumaB < lumaMin || lumaB > lumaMax ? rgbA : rgbB, 1.0);
}
`

// Probe capture convolutions: a cube is rendered per face and the direction
// interpolated from the cube corner positions.
const captureVertexSrc = `
#version 410 core
layout (location = 0) in vec3 aPos;
uniform mat4 uView;
uniform mat4 uProjection;
out vec3 vDir;
void main() {
    vDir = aPos;
    gl_Position = uProjection * uView * vec4(aPos, 1.0);
}
`

const irradianceConvFragmentSrc = `
#version 410 core
in vec3 vDir;
uniform samplerCube uCapture;
out vec4 fragColor;

void main() {
    vec3 n = normalize(vDir);
    vec3 up = abs(n.y) < 0.999 ? vec3(0.0, 1.0, 0.0) : vec3(1.0, 0.0, 0.0);
    vec3 right = normalize(cross(up, n));
    up = cross(n, right);

    vec3 sum = vec3(0.0);
    float count = 0.0;
    for (float phi = 0.0; phi < 6.2831853; phi += 0.3926991) {
        for (float theta = 0.0; theta < 1.5707963; theta += 0.19634954) {
            vec3 tangentDir = vec3(sin(theta) * cos(phi), sin(theta) * sin(phi), cos(theta));
            vec3 dir = tangentDir.x * right + tangentDir.y * up + tangentDir.z * n;
            sum += texture(uCapture, dir).rgb * cos(theta) * sin(theta);
            count += 1.0;
        }
    }
    fragColor = vec4(3.14159265 * sum / count, 1.0);
}
`

const envConvFragmentSrc = `
#version 410 core
in vec3 vDir;
uniform samplerCube uCapture;
out vec4 fragColor;

void main() {
    vec3 n = normalize(vDir);
    vec3 up = abs(n.y) < 0.999 ? vec3(0.0, 1.0, 0.0) : vec3(1.0, 0.0, 0.0);
    vec3 right = normalize(cross(up, n));
    up = cross(n, right);

    vec3 sum = texture(uCapture, n).rgb * 2.0;
    float total = 2.0;
    for (int i = 0; i < 8; i++) {
        float phi = float(i) * 0.78539816;
        vec3 dir = normalize(n + 0.15 * (cos(phi) * right + sin(phi) * up));
        sum += texture(uCapture, dir).rgb;
        total += 1.0;
    }
    fragColor = vec4(sum / total, 1.0);
}
`
