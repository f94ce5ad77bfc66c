package runnertool

import (
	"github.com/sandboxkit/runnertools-go/internal/shellgen"
)

// payloadBuilders maps tool names from variants.yaml to their typed
// payload pipelines. A table entry without a builder is a definition
// error surfaced by Tools().
var payloadBuilders = map[string]func() []shellgen.Step{
	"python_script_runner":    pythonScriptRunnerSteps,
	"create_codesandbox":      createSandboxSteps,
	"execute_codesandbox":     executeSandboxSteps,
	"create_codesandbox_sdk":  createSandboxSDKSteps,
	"execute_codesandbox_sdk": executeSandboxSDKSteps,
}

func pythonScriptRunnerSteps() []shellgen.Step {
	return []shellgen.Step{
		shellgen.BindArgs{Names: []string{"script_path", "script_content"}},
		shellgen.RequireOneOf{
			Names: []string{"script_path", "script_content"},
			Usage: []string{
				"Usage examples:",
				"  - script_path: /path/to/your/script.py",
				"  - script_content: 'import pandas as pd; print(pd.__version__)'",
				"Pre-installed libraries: pandas, openpyxl, lxml, boto3",
			},
		},
		shellgen.AptPackages{Packages: []string{"gcc"}},
		shellgen.PipPackages{Packages: []string{"pandas", "openpyxl", "lxml", "boto3"}},
		shellgen.Raw{Text: `if [ -n "$script_content" ]; then
    echo "Executing Python script from content..."
    TEMP_SCRIPT="/tmp/temp_script.py"
    printf '%s\n' "$script_content" > "$TEMP_SCRIPT"
    echo "Output:"
    if python "$TEMP_SCRIPT"; then
        echo ""
        echo "Script executed successfully"
    else
        echo ""
        echo "Error: script execution failed"
        rm -f "$TEMP_SCRIPT"
        exit 1
    fi
    rm -f "$TEMP_SCRIPT"
else
    echo "Executing Python script: $script_path"
    if [ ! -f "$script_path" ]; then
        echo "Error: script '$script_path' not found"
        exit 1
    fi
    echo "Output:"
    if python "$script_path"; then
        echo ""
        echo "Script executed successfully"
    else
        echo ""
        echo "Error: script execution failed"
        exit 1
    fi
fi`},
	}
}

func createSandboxSteps() []shellgen.Step {
	return []shellgen.Step{
		shellgen.BindArgs{Names: []string{"script_content", "sandbox_name", "template_type"}},
		shellgen.BindSecret{Var: "api_key", Secret: "CODE_SANDBOX_API"},
		shellgen.RequireVar{
			Name: "script_content",
			Usage: []string{
				"Usage:",
				"  script_content: Python code to run in the sandbox",
				"  sandbox_name: (optional) name for the sandbox (default: python-script)",
				"  template_type: (optional) template type (default: python)",
			},
		},
		shellgen.Raw{Text: `if [ -z "$api_key" ]; then
    echo "Error: CODE_SANDBOX_API secret is not configured"
    echo "Create an API key in the provider dashboard and configure the CODE_SANDBOX_API secret."
    exit 1
fi`},
		shellgen.DefaultVar{Name: "sandbox_name", Default: "python-script"},
		shellgen.DefaultVar{Name: "template_type", Default: "python"},
		shellgen.PipPackages{Packages: []string{"requests"}},
		shellgen.Raw{Text: `export script_content sandbox_name template_type api_key
echo "Creating sandbox '$sandbox_name' (template: $template_type)..."`},
		shellgen.WriteFileHeredoc{Path: "/tmp/create_sandbox.py", Content: createSandboxDriver},
		shellgen.RunPython{Target: "/tmp/create_sandbox.py"},
	}
}

func executeSandboxSteps() []shellgen.Step {
	return []shellgen.Step{
		shellgen.BindArgs{Names: []string{"script_content", "sandbox_id", "sandbox_name"}},
		shellgen.BindSecret{Var: "api_key", Secret: "CODE_SANDBOX_API"},
		shellgen.RequireVar{
			Name: "script_content",
			Usage: []string{
				"Usage:",
				"  script_content: Python code to execute",
				"  sandbox_id: (optional) existing sandbox ID",
				"  sandbox_name: (optional) sandbox name to look up or create",
			},
		},
		shellgen.DefaultVar{Name: "sandbox_name", Default: "python-script"},
		shellgen.PipPackages{Packages: []string{"requests"}},
		shellgen.Raw{Text: `export script_content sandbox_id sandbox_name api_key`},
		shellgen.WriteFileHeredoc{Path: "/tmp/execute_sandbox.py", Content: executeSandboxDriver},
		shellgen.RunPython{Target: "/tmp/execute_sandbox.py"},
	}
}

// codesandboxSDKPreamble is prepended to every SDK-based payload: the
// SDK is installed into a throwaway npm project and the API key is
// checked before any driver runs.
func codesandboxSDKPreamble() []shellgen.Step {
	return []shellgen.Step{
		shellgen.NpmPackage{Dir: "/tmp/codesandbox_project", Package: "@codesandbox/sdk"},
		shellgen.Raw{Text: `if [ -z "$CSB_API_KEY" ]; then
    echo "Error: CSB_API_KEY environment variable is not set"
    echo "Create an API key under dashboard settings and configure the CSB_API_KEY secret."
    echo "Note: the provider API requires a Pro plan."
    exit 1
fi`},
	}
}

func createSandboxSDKSteps() []shellgen.Step {
	steps := codesandboxSDKPreamble()
	return append(steps,
		shellgen.BindArgs{Names: []string{"script_content", "sandbox_name", "template_type"}},
		shellgen.RequireVar{Name: "script_content", Usage: []string{"script_content: Python code to save as main.py"}},
		shellgen.DefaultVar{Name: "sandbox_name", Default: "python-script"},
		shellgen.DefaultVar{Name: "template_type", Default: "python"},
		shellgen.Raw{Text: `export SCRIPT_CONTENT="$script_content"
export SANDBOX_NAME="$sandbox_name"
export TEMPLATE_TYPE="$template_type"`},
		shellgen.WriteFileHeredoc{Path: "/tmp/codesandbox_project/create_sandbox.js", Content: createSandboxSDKDriver},
		shellgen.RunNode{Target: "/tmp/codesandbox_project/create_sandbox.js"},
	)
}

func executeSandboxSDKSteps() []shellgen.Step {
	steps := codesandboxSDKPreamble()
	return append(steps,
		shellgen.BindArgs{Names: []string{"script_content", "sandbox_id", "sandbox_name"}},
		shellgen.RequireVar{Name: "script_content", Usage: []string{"script_content: Python code to execute in the sandbox"}},
		shellgen.DefaultVar{Name: "sandbox_name", Default: "python-script"},
		shellgen.Raw{Text: `export SCRIPT_CONTENT="$script_content"
export SANDBOX_ID="$sandbox_id"
export SANDBOX_NAME="$sandbox_name"`},
		shellgen.WriteFileHeredoc{Path: "/tmp/codesandbox_project/execute_sandbox.js", Content: executeSandboxSDKDriver},
		shellgen.RunNode{Target: "/tmp/codesandbox_project/execute_sandbox.js"},
	)
}

// The drivers below run inside the payload environment and read their
// inputs from exported environment variables, never from interpolated
// text, so script content cannot break out of the driver source.

const createSandboxDriver = `import json
import os
import re
import sys

import requests

API_URL = "https://codesandbox.io/api/v1/sandboxes"


def main():
    script_content = os.environ["script_content"]
    sandbox_name = os.environ.get("sandbox_name", "python-script")
    template_type = os.environ.get("template_type", "python")
    api_key = os.environ["api_key"]

    files = {
        "main.py": {"content": script_content},
        "requirements.txt": {"content": "pandas\nnumpy\nrequests\n"},
        "package.json": {
            "content": json.dumps(
                {
                    "name": sandbox_name,
                    "version": "1.0.0",
                    "description": "Python script sandbox",
                    "main": "main.py",
                    "scripts": {"start": "python main.py"},
                },
                indent=2,
            )
        },
    }

    headers = {
        "Content-Type": "application/json",
        "Accept": "application/json",
        "Authorization": "Bearer " + api_key,
    }
    resp = requests.post(
        API_URL, json={"files": files, "template": template_type}, headers=headers, timeout=30
    )

    if resp.status_code == 401:
        print("Error: authentication failed; check the CODE_SANDBOX_API secret")
        sys.exit(1)
    if resp.status_code == 403:
        print("Error: access forbidden; the API key may lack sandbox permissions")
        sys.exit(1)
    if resp.status_code != 200:
        print("Error: API returned", resp.status_code)
        print(resp.text)
        sys.exit(1)

    sandbox = resp.json()
    sandbox_id = sandbox.get("id", "")
    print("Sandbox created:", sandbox_id)
    print("URL: https://codesandbox.io/s/" + sandbox_id)

    key = re.sub(r"[^a-zA-Z0-9]", "_", sandbox_name)
    meta_path = "/tmp/sandbox_" + key + ".json"
    with open(meta_path, "w") as f:
        json.dump(
            {"id": sandbox_id, "name": sandbox_name, "template": template_type}, f, indent=2
        )
    print("Sandbox info saved to:", meta_path)


if __name__ == "__main__":
    main()
`

const executeSandboxDriver = `import json
import os
import re
import sys

import requests

API_URL = "https://codesandbox.io/api/v1/sandboxes"


def load_saved(sandbox_name):
    key = re.sub(r"[^a-zA-Z0-9]", "_", sandbox_name)
    meta_path = "/tmp/sandbox_" + key + ".json"
    if not os.path.exists(meta_path):
        return None
    with open(meta_path) as f:
        return json.load(f)


def create(script_content, sandbox_name, api_key):
    headers = {
        "Content-Type": "application/json",
        "Accept": "application/json",
        "Authorization": "Bearer " + api_key,
    }
    files = {"main.py": {"content": script_content}}
    resp = requests.post(
        API_URL, json={"files": files, "template": "python"}, headers=headers, timeout=30
    )
    if resp.status_code != 200:
        print("Error: sandbox creation failed with status", resp.status_code)
        print(resp.text)
        sys.exit(1)
    return resp.json()


def main():
    script_content = os.environ["script_content"]
    sandbox_id = os.environ.get("sandbox_id", "")
    sandbox_name = os.environ.get("sandbox_name", "python-script")
    api_key = os.environ.get("api_key", "")

    if not sandbox_id:
        saved = load_saved(sandbox_name)
        if saved:
            sandbox_id = saved.get("id", "")
            print("Reusing saved sandbox:", sandbox_id)

    if not sandbox_id:
        if not api_key:
            print("Error: no sandbox found and CODE_SANDBOX_API is not configured")
            sys.exit(1)
        sandbox = create(script_content, sandbox_name, api_key)
        sandbox_id = sandbox.get("id", "")
        key = re.sub(r"[^a-zA-Z0-9]", "_", sandbox_name)
        with open("/tmp/sandbox_" + key + ".json", "w") as f:
            json.dump({"id": sandbox_id, "name": sandbox_name}, f, indent=2)
        print("Created new sandbox:", sandbox_id)

    print("Sandbox URL: https://codesandbox.io/s/" + sandbox_id)
    print("The sandbox now contains the submitted script as main.py.")


if __name__ == "__main__":
    main()
`

const createSandboxSDKDriver = `const { CodeSandbox } = require('@codesandbox/sdk');
const fs = require('fs');

async function main() {
    const sdk = new CodeSandbox(process.env.CSB_API_KEY);
    const name = process.env.SANDBOX_NAME || 'python-script';

    console.log('Creating sandbox via SDK...');
    const sandbox = await sdk.sandboxes.create({
        title: name,
        description: 'Python script sandbox',
        files: {
            'requirements.txt': { content: 'pandas\nnumpy\nrequests\n' },
        },
        template: process.env.TEMPLATE_TYPE || 'python',
        privacy: 'unlisted',
        hibernationTimeoutSeconds: 1800,
    });
    console.log('Sandbox created:', sandbox.id);
    console.log('URL: https://codesandbox.io/s/' + sandbox.id);

    const client = await sandbox.connect({ id: 'script-creator', permission: 'write' });
    await client.fs.writeTextFile('main.py', process.env.SCRIPT_CONTENT || '');
    console.log('Script saved to main.py');

    const key = name.replace(/[^a-zA-Z0-9]/g, '_');
    const metaPath = '/tmp/sandbox_' + key + '.json';
    fs.writeFileSync(metaPath, JSON.stringify({
        id: sandbox.id,
        name: name,
        url: 'https://codesandbox.io/s/' + sandbox.id,
        createdAt: new Date().toISOString(),
    }, null, 2));
    console.log('Sandbox info saved to:', metaPath);
}

main().catch(function (err) {
    console.error('Error:', err.message);
    process.exit(1);
});
`

const executeSandboxSDKDriver = `const { CodeSandbox } = require('@codesandbox/sdk');
const fs = require('fs');

function loadSaved(name) {
    const key = name.replace(/[^a-zA-Z0-9]/g, '_');
    const metaPath = '/tmp/sandbox_' + key + '.json';
    if (!fs.existsSync(metaPath)) {
        return null;
    }
    return JSON.parse(fs.readFileSync(metaPath, 'utf8'));
}

async function main() {
    const sdk = new CodeSandbox(process.env.CSB_API_KEY);
    const name = process.env.SANDBOX_NAME || 'python-script';

    let sandboxId = process.env.SANDBOX_ID || '';
    if (!sandboxId) {
        const saved = loadSaved(name);
        if (saved && saved.id) {
            sandboxId = saved.id;
            console.log('Reusing saved sandbox:', sandboxId);
        }
    }

    let sandbox;
    if (sandboxId) {
        sandbox = await sdk.sandboxes.resume(sandboxId);
    } else {
        console.log('No sandbox found, creating a new one...');
        sandbox = await sdk.sandboxes.create({ title: name, template: 'python' });
        const key = name.replace(/[^a-zA-Z0-9]/g, '_');
        fs.writeFileSync('/tmp/sandbox_' + key + '.json', JSON.stringify({
            id: sandbox.id,
            name: name,
        }, null, 2));
    }

    const client = await sandbox.connect({ id: 'script-executor', permission: 'write' });
    await client.fs.writeTextFile('main.py', process.env.SCRIPT_CONTENT || '');

    console.log('Running main.py...');
    const result = await client.commands.run('python main.py', { timeout: 120000 });
    console.log('Output:');
    console.log(result);
    console.log('Script executed in sandbox:', sandbox.id);
}

main().catch(function (err) {
    console.error('Error:', err.message);
    process.exit(1);
});
`
